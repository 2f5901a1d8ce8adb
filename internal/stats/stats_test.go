// file: internal/stats/stats_test.go
// version: 1.2.0
// guid: a7b8c9d0-e1f2-3a4b-5c6d-7e8f9a0b1c2d

package stats

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cratestats/cratestats/internal/models"
)

func f64p(v float64) *float64 { return &v }
func intp(v int) *int         { return &v }
func strp(s string) *string   { return &s }

func dated(year int, month time.Month) time.Time {
	return time.Date(year, month, 15, 12, 0, 0, 0, time.UTC)
}

func TestGenreDistributionCountsTagPairs(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", Genres: []string{"House", "Techno"}},
		{ID: "2", Genres: []string{"House"}},
		{ID: "3"}, // no tags, contributes nothing
	}

	dist := GenreDistribution(tracks)

	total := 0
	for _, e := range dist {
		total += e.Count
	}
	if total != 3 {
		t.Errorf("distribution sums to %d, expected 3 (track,tag) pairs", total)
	}
	if dist[0].Label != "House" || dist[0].Count != 2 {
		t.Errorf("top genre = %+v, expected House/2", dist[0])
	}
}

func TestBPMDistributionBuckets(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", BPM: f64p(123.5)},
		{ID: "2", BPM: f64p(128)},
		{ID: "3", BPM: f64p(129.99)},
		{ID: "4", BPM: f64p(140)},
		{ID: "5"}, // absent BPM excluded
	}

	dist := BPMDistribution(tracks, 10)

	if len(dist) != 2 {
		t.Fatalf("got %d buckets, expected 2: %+v", len(dist), dist)
	}
	if dist[0].Label != "120-130" || dist[0].Count != 3 {
		t.Errorf("first bucket = %+v, expected 120-130/3", dist[0])
	}
	if dist[1].Label != "140-150" || dist[1].Count != 1 {
		t.Errorf("second bucket = %+v, expected 140-150/1", dist[1])
	}

	// Bucket starts must be multiples of the bucket size
	for _, e := range dist {
		start, err := strconv.Atoi(strings.SplitN(e.Label, "-", 2)[0])
		if err != nil || start%10 != 0 {
			t.Errorf("bucket label %q does not start on a multiple of 10", e.Label)
		}
	}
}

func TestBPMDistributionBucketSizeFallback(t *testing.T) {
	tracks := []models.Track{{ID: "1", BPM: f64p(95)}}
	dist := BPMDistribution(tracks, 0)
	if len(dist) != 1 || dist[0].Label != "90-100" {
		t.Errorf("dist = %+v, expected default bucket size 10", dist)
	}
}

func TestKeyDistributionVerbatim(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", Key: strp("8B")},
		{ID: "2", Key: strp("8B")},
		{ID: "3", Key: strp("8b")}, // no canonicalization: distinct from 8B
	}

	dist := KeyDistribution(tracks)
	if len(dist) != 2 {
		t.Fatalf("got %d keys, expected 2 distinct raw strings", len(dist))
	}
	if dist[0].Label != "8B" || dist[0].Count != 2 {
		t.Errorf("top key = %+v, expected 8B/2", dist[0])
	}
}

func TestRatingDistributionIncludesUnrated(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", Rating: intp(5)},
		{ID: "2", Rating: intp(5)},
		{ID: "3"}, // unrated maps to 0
	}

	dist := RatingDistribution(tracks)
	if len(dist) != 2 {
		t.Fatalf("got %d rating buckets, expected 2", len(dist))
	}
	if dist[0].Rating != 0 || dist[0].Count != 1 {
		t.Errorf("first bucket = %+v, expected rating 0 count 1", dist[0])
	}
	if dist[1].Rating != 5 || dist[1].Count != 2 {
		t.Errorf("second bucket = %+v, expected rating 5 count 2", dist[1])
	}

	total := 0
	for _, e := range dist {
		total += e.Count
	}
	if total != len(tracks) {
		t.Errorf("rating counts sum to %d, expected every track counted (%d)", total, len(tracks))
	}
}

func TestGrowthTimelineCumulative(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", DateAdded: dated(2023, time.January)},
		{ID: "2", DateAdded: dated(2023, time.January)},
		{ID: "3", DateAdded: dated(2023, time.February)},
	}

	timeline := GrowthTimeline(tracks)
	if len(timeline) != 2 {
		t.Fatalf("got %d buckets, expected 2", len(timeline))
	}
	if timeline[0].Month != "2023-01" || timeline[0].Count != 2 {
		t.Errorf("first bucket = %+v, expected 2023-01/2", timeline[0])
	}
	if timeline[1].Month != "2023-02" || timeline[1].Count != 3 {
		t.Errorf("second bucket = %+v, expected cumulative 2023-02/3", timeline[1])
	}

	// Cumulative counts never decrease
	prev := 0
	for _, e := range timeline {
		if e.Count < prev {
			t.Errorf("count decreased at %s: %d < %d", e.Month, e.Count, prev)
		}
		prev = e.Count
	}
	if timeline[len(timeline)-1].Count != len(tracks) {
		t.Errorf("final count = %d, expected all %d dated tracks", timeline[len(timeline)-1].Count, len(tracks))
	}
}

func TestUniqueArtists(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", Artist: "Daft Punk"},
		{ID: "2", Artist: "daft punk"},
		{ID: "3", Artist: "DAFT PUNK "},
		{ID: "4", Artist: "deadmau5"},
		{ID: "5", Artist: "Unknown"},
		{ID: "6", Artist: ""},
	}

	if got := UniqueArtists(tracks); got != 2 {
		t.Errorf("UniqueArtists = %d, expected 2 (case-insensitive, Unknown excluded)", got)
	}
}

func TestAverageBPM(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", BPM: f64p(120)},
		{ID: "2", BPM: f64p(130)},
		{ID: "3"},
	}
	if got := AverageBPM(tracks); got != 125 {
		t.Errorf("AverageBPM = %v, expected 125", got)
	}
	if got := AverageBPM(nil); got != 0 {
		t.Errorf("AverageBPM of empty = %v, expected 0", got)
	}
}

func TestTotalDurationHours(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", Duration: 1800},
		{ID: "2", Duration: 1800},
	}
	if got := TotalDurationHours(tracks); got != 1 {
		t.Errorf("TotalDurationHours = %v, expected 1", got)
	}
}

func TestPlaylistCountIgnoresFolders(t *testing.T) {
	playlists := []models.Playlist{
		{ID: "a", Kind: models.KindFolder},
		{ID: "b", Kind: models.KindPlaylist},
		{ID: "c", Kind: models.KindPlaylist},
	}
	if got := PlaylistCount(playlists); got != 2 {
		t.Errorf("PlaylistCount = %d, expected 2", got)
	}
}

func TestDuplicateGroups(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", Artist: "Daft Punk", Title: "One More Time"},
		{ID: "2", Artist: " daft punk ", Title: "ONE MORE TIME"},
		{ID: "3", Artist: "deadmau5", Title: "Strobe"},
		{ID: "4", Artist: "Unknown", Title: "Mystery"},
		{ID: "5", Artist: "Unknown", Title: "Mystery"},
	}

	groups := DuplicateGroups(tracks)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, expected 1 (Unknown excluded)", len(groups))
	}
	if len(groups[0].Tracks) != 2 {
		t.Errorf("group size = %d, expected 2", len(groups[0].Tracks))
	}
	if groups[0].Key != "daft punk|one more time" {
		t.Errorf("group key = %q", groups[0].Key)
	}
}

func TestDuplicateGroupsSortedBySize(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", Artist: "A", Title: "x"},
		{ID: "2", Artist: "A", Title: "x"},
		{ID: "3", Artist: "B", Title: "y"},
		{ID: "4", Artist: "B", Title: "y"},
		{ID: "5", Artist: "B", Title: "y"},
	}

	groups := DuplicateGroups(tracks)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, expected 2", len(groups))
	}
	if len(groups[0].Tracks) != 3 {
		t.Errorf("largest group first: got size %d", len(groups[0].Tracks))
	}
}

func TestTopTracksByPlayCount(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", PlayCount: intp(3)},
		{ID: "2", PlayCount: intp(10)},
		{ID: "3"},
		{ID: "4", PlayCount: intp(7)},
	}

	top := TopTracksByPlayCount(tracks, 2)
	if len(top) != 2 {
		t.Fatalf("got %d tracks, expected 2", len(top))
	}
	if top[0].ID != "2" || top[1].ID != "4" {
		t.Errorf("top order = %s,%s, expected 2,4", top[0].ID, top[1].ID)
	}
}

func TestTopArtists(t *testing.T) {
	tracks := []models.Track{
		{ID: "1", Artist: "deadmau5"},
		{ID: "2", Artist: "deadmau5"},
		{ID: "3", Artist: "Daft Punk"},
		{ID: "4", Artist: "Unknown"},
	}

	top := TopArtists(tracks, 5)
	if len(top) != 2 {
		t.Fatalf("got %d artists, expected 2", len(top))
	}
	if top[0].Label != "deadmau5" || top[0].Count != 2 {
		t.Errorf("top artist = %+v", top[0])
	}
}

func TestComputeSnapshot(t *testing.T) {
	lib := models.Library{
		Tracks: []models.Track{
			{ID: "1", Artist: "deadmau5", Title: "Strobe", Genres: []string{"Progressive House"},
				BPM: f64p(128), Duration: 634, DateAdded: dated(2023, time.January)},
			{ID: "2", Artist: "Daft Punk", Title: "One More Time", Genres: []string{"House"},
				BPM: f64p(123), Duration: 320, DateAdded: dated(2023, time.February), Rating: intp(5)},
		},
		Playlists: []models.Playlist{
			{ID: "p1", Kind: models.KindFolder},
			{ID: "p2", Kind: models.KindPlaylist},
		},
	}

	snap := Compute(lib)

	if snap.TotalTracks != 2 || snap.TotalPlaylists != 1 {
		t.Errorf("totals = %d tracks / %d playlists, expected 2/1", snap.TotalTracks, snap.TotalPlaylists)
	}
	if snap.UniqueArtists != 2 || snap.UniqueGenres != 2 {
		t.Errorf("unique = %d artists / %d genres, expected 2/2", snap.UniqueArtists, snap.UniqueGenres)
	}
	if snap.AverageBPM != 125.5 {
		t.Errorf("AverageBPM = %v, expected 125.5", snap.AverageBPM)
	}
	if len(snap.GrowthTimeline) != 2 || snap.GrowthTimeline[1].Count != 2 {
		t.Errorf("GrowthTimeline = %+v", snap.GrowthTimeline)
	}
	if snap.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
}
