// file: internal/stats/stats.go
// version: 1.3.0
// guid: 3a4b5c6d-7e8f-9a0b-1c2d-3e4f5a6b7c8d

// Package stats computes aggregate metrics over a validated library. Every
// reducer is a pure function of its input slice: no shared state, no
// ordering requirements on the input, deterministic output ordering.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cratestats/cratestats/internal/models"
)

// DefaultBPMBucketSize groups tempos into 10-BPM histogram buckets
const DefaultBPMBucketSize = 10

// Compute derives the full stats snapshot for a library
func Compute(lib models.Library) models.LibraryStats {
	return models.LibraryStats{
		TotalTracks:        len(lib.Tracks),
		TotalPlaylists:     PlaylistCount(lib.Playlists),
		UniqueArtists:      UniqueArtists(lib.Tracks),
		UniqueGenres:       UniqueGenres(lib.Tracks),
		AverageBPM:         AverageBPM(lib.Tracks),
		TotalDurationHours: TotalDurationHours(lib.Tracks),
		GenreDistribution:  GenreDistribution(lib.Tracks),
		BPMDistribution:    BPMDistribution(lib.Tracks, DefaultBPMBucketSize),
		KeyDistribution:    KeyDistribution(lib.Tracks),
		RatingDistribution: RatingDistribution(lib.Tracks),
		GrowthTimeline:     GrowthTimeline(lib.Tracks),
		Duplicates:         DuplicateGroups(lib.Tracks),
		GeneratedAt:        time.Now(),
	}
}

// GenreDistribution counts one occurrence per (track, genre tag) pair, so
// a track with N tags contributes to N buckets. Sorted descending by
// count; tie order is unspecified but stable.
func GenreDistribution(tracks []models.Track) []models.CountEntry {
	counts := make(map[string]int)
	for _, t := range tracks {
		for _, g := range t.Genres {
			counts[g]++
		}
	}
	return sortedByCountDesc(counts)
}

// BPMDistribution buckets tempos by floor(bpm/size)*size. Tracks without
// a BPM are excluded. Buckets are labeled "<start>-<start+size>" and
// sorted ascending by start.
func BPMDistribution(tracks []models.Track, bucketSize int) []models.CountEntry {
	if bucketSize <= 0 {
		bucketSize = DefaultBPMBucketSize
	}

	counts := make(map[int]int)
	for _, t := range tracks {
		if t.BPM == nil {
			continue
		}
		start := int(math.Floor(*t.BPM/float64(bucketSize))) * bucketSize
		counts[start]++
	}

	starts := make([]int, 0, len(counts))
	for s := range counts {
		starts = append(starts, s)
	}
	sort.Ints(starts)

	out := make([]models.CountEntry, 0, len(starts))
	for _, s := range starts {
		out = append(out, models.CountEntry{
			Label: fmt.Sprintf("%d-%d", s, s+bucketSize),
			Count: counts[s],
		})
	}
	return out
}

// KeyDistribution counts raw key strings verbatim, with no Camelot
// canonicalization, sorted descending by count.
func KeyDistribution(tracks []models.Track) []models.CountEntry {
	counts := make(map[string]int)
	for _, t := range tracks {
		if t.Key != nil {
			counts[*t.Key]++
		}
	}
	return sortedByCountDesc(counts)
}

// RatingDistribution includes every track, mapping an absent rating to 0.
// Sorted ascending by rating.
func RatingDistribution(tracks []models.Track) []models.RatingEntry {
	counts := make(map[int]int)
	for _, t := range tracks {
		r := 0
		if t.Rating != nil {
			r = *t.Rating
		}
		counts[r]++
	}

	ratings := make([]int, 0, len(counts))
	for r := range counts {
		ratings = append(ratings, r)
	}
	sort.Ints(ratings)

	out := make([]models.RatingEntry, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, models.RatingEntry{Rating: r, Count: counts[r]})
	}
	return out
}

// GrowthTimeline groups tracks by the year-month of DateAdded and emits
// the cumulative count through each month, in chronological order.
func GrowthTimeline(tracks []models.Track) []models.GrowthEntry {
	perMonth := make(map[string]int)
	for _, t := range tracks {
		perMonth[t.DateAdded.Format("2006-01")]++
	}

	months := make([]string, 0, len(perMonth))
	for m := range perMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]models.GrowthEntry, 0, len(months))
	running := 0
	for _, m := range months {
		running += perMonth[m]
		out = append(out, models.GrowthEntry{Month: m, Count: running})
	}
	return out
}

// UniqueArtists counts distinct artists case-insensitively, excluding the
// "Unknown" placeholder.
func UniqueArtists(tracks []models.Track) int {
	seen := make(map[string]struct{})
	for _, t := range tracks {
		name := strings.ToLower(strings.TrimSpace(t.Artist))
		if name == "" || name == "unknown" {
			continue
		}
		seen[name] = struct{}{}
	}
	return len(seen)
}

// UniqueGenres counts distinct genre tags across all tracks
func UniqueGenres(tracks []models.Track) int {
	seen := make(map[string]struct{})
	for _, t := range tracks {
		for _, g := range t.Genres {
			seen[g] = struct{}{}
		}
	}
	return len(seen)
}

// AverageBPM is the arithmetic mean over tracks with a BPM, 0 if none
func AverageBPM(tracks []models.Track) float64 {
	sum := 0.0
	n := 0
	for _, t := range tracks {
		if t.BPM != nil {
			sum += *t.BPM
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// TotalDurationHours sums track durations and converts seconds to hours
func TotalDurationHours(tracks []models.Track) float64 {
	total := 0
	for _, t := range tracks {
		total += t.Duration
	}
	return float64(total) / 3600
}

// PlaylistCount counts leaf playlists, ignoring folders
func PlaylistCount(playlists []models.Playlist) int {
	n := 0
	for _, p := range playlists {
		if p.Kind == models.KindPlaylist {
			n++
		}
	}
	return n
}

// DuplicateGroups groups tracks by lowercase-trimmed "artist|title",
// skipping tracks whose artist or title is missing or "Unknown", and
// returns only groups with at least two members, largest first.
func DuplicateGroups(tracks []models.Track) []models.DuplicateGroup {
	groups := make(map[string][]models.Track)
	for _, t := range tracks {
		artist := strings.ToLower(strings.TrimSpace(t.Artist))
		title := strings.ToLower(strings.TrimSpace(t.Title))
		if artist == "" || artist == "unknown" || title == "" || title == "unknown" {
			continue
		}
		key := artist + "|" + title
		groups[key] = append(groups[key], t)
	}

	keys := make([]string, 0, len(groups))
	for k, members := range groups {
		if len(members) >= 2 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]models.DuplicateGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.DuplicateGroup{Key: k, Tracks: groups[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Tracks) > len(out[j].Tracks)
	})
	return out
}

// TopTracksByPlayCount returns up to n tracks ordered by descending play
// count. Tracks without a play count rank as 0.
func TopTracksByPlayCount(tracks []models.Track, n int) []models.Track {
	sorted := make([]models.Track, len(tracks))
	copy(sorted, tracks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return playCountOf(sorted[i]) > playCountOf(sorted[j])
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// TopArtists returns up to n artists ordered by descending track count,
// excluding the "Unknown" placeholder.
func TopArtists(tracks []models.Track, n int) []models.CountEntry {
	counts := make(map[string]int)
	for _, t := range tracks {
		name := strings.TrimSpace(t.Artist)
		if name == "" || strings.EqualFold(name, "unknown") {
			continue
		}
		counts[name]++
	}
	out := sortedByCountDesc(counts)
	if n < len(out) {
		out = out[:n]
	}
	return out
}

func playCountOf(t models.Track) int {
	if t.PlayCount == nil {
		return 0
	}
	return *t.PlayCount
}

// sortedByCountDesc turns a label->count map into entries sorted by
// descending count, with label order breaking exact ties so the output is
// deterministic.
func sortedByCountDesc(counts map[string]int) []models.CountEntry {
	out := make([]models.CountEntry, 0, len(counts))
	for label, count := range counts {
		out = append(out, models.CountEntry{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
