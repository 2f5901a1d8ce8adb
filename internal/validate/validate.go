// file: internal/validate/validate.go
// version: 1.2.0
// guid: 2f3a4b5c-6d7e-8f9a-0b1c-2d3e4f5a6b7c

// Package validate is a second, decoder-independent pass over a candidate
// library. It guarantees every model invariant regardless of how the raw
// value was produced, so producers other than the rekordbox parser only
// have to satisfy this package. All coercions are idempotent: validating
// an already-valid Library returns it unchanged.
package validate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cratestats/cratestats/internal/models"
)

// ValidationError reports a value that cannot be coerced into a valid
// Library. It carries the path of the offending field.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed at %s: %s", e.Path, e.Reason)
}

func errAt(path, format string, args ...interface{}) error {
	return &ValidationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Library validates and coerces a candidate library. Coercion failures on
// optional fields degrade to defaults; a structurally absent identity or a
// broken playlist forest is fatal.
func Library(in models.Library) (models.Library, error) {
	out := models.Library{
		Tracks:    make([]models.Track, len(in.Tracks)),
		Playlists: make([]models.Playlist, len(in.Playlists)),
		Metadata:  in.Metadata,
	}

	if out.Metadata.TrackCount < 0 {
		out.Metadata.TrackCount = 0
	}
	if out.Metadata.Producer == "" {
		out.Metadata.Producer = "unknown"
	}
	if out.Metadata.ParsedAt.IsZero() {
		out.Metadata.ParsedAt = time.Now()
	}

	seen := make(map[string]struct{}, len(in.Tracks))
	for i, t := range in.Tracks {
		path := fmt.Sprintf("tracks[%d]", i)
		if strings.TrimSpace(t.ID) == "" {
			return models.Library{}, errAt(path+".id", "identity is required")
		}
		if _, dup := seen[t.ID]; dup {
			return models.Library{}, errAt(path+".id", "duplicate track identity %q", t.ID)
		}
		seen[t.ID] = struct{}{}
		out.Tracks[i] = coerceTrack(t)
	}

	playlistIDs := make(map[string]int, len(in.Playlists))
	for i, p := range in.Playlists {
		path := fmt.Sprintf("playlists[%d]", i)
		if strings.TrimSpace(p.ID) == "" {
			return models.Library{}, errAt(path+".id", "identity is required")
		}
		if _, dup := playlistIDs[p.ID]; dup {
			return models.Library{}, errAt(path+".id", "duplicate playlist identity %q", p.ID)
		}
		playlistIDs[p.ID] = i
		out.Playlists[i] = coercePlaylist(p)
	}

	// Parent references must form a forest: every reference resolves and
	// walking parents always terminates.
	for i, p := range out.Playlists {
		if p.ParentID == nil {
			continue
		}
		path := fmt.Sprintf("playlists[%d].parent_id", i)
		if _, ok := playlistIDs[*p.ParentID]; !ok {
			return models.Library{}, errAt(path, "references unknown playlist %q", *p.ParentID)
		}
	}
	if err := checkAcyclic(out.Playlists, playlistIDs); err != nil {
		return models.Library{}, err
	}

	return out, nil
}

// coerceTrack applies the per-field bounds and defaults. Mirrors the
// normalizer's rules so the pass is a no-op on its output.
func coerceTrack(t models.Track) models.Track {
	t.Title = defaultIfBlank(t.Title, "Unknown")
	t.Artist = defaultIfBlank(t.Artist, "Unknown")
	t.Album = cleanOptString(t.Album)
	t.Genres = cleanGenres(t.Genres)
	if t.BPM != nil && (math.IsNaN(*t.BPM) || math.IsInf(*t.BPM, 0) || *t.BPM <= 0) {
		t.BPM = nil
	}
	t.Key = cleanOptString(t.Key)
	if t.Rating != nil && (*t.Rating < 0 || *t.Rating > 5) {
		t.Rating = nil
	}
	if t.PlayCount != nil && *t.PlayCount < 0 {
		t.PlayCount = nil
	}
	if t.Duration < 0 {
		t.Duration = 0
	}
	if t.DateAdded.IsZero() {
		t.DateAdded = time.Now()
	}
	if t.TrackNumber != nil && *t.TrackNumber <= 0 {
		t.TrackNumber = nil
	}
	if t.Year != nil && (*t.Year < 1900 || *t.Year > 2100) {
		t.Year = nil
	}
	t.Comments = cleanOptString(t.Comments)
	t.Tonality = cleanOptString(t.Tonality)
	t.Label = cleanOptString(t.Label)
	t.Remixer = cleanOptString(t.Remixer)
	t.Composer = cleanOptString(t.Composer)
	t.Grouping = cleanOptString(t.Grouping)
	if t.BitRate != nil && *t.BitRate <= 0 {
		t.BitRate = nil
	}
	if t.SampleRate != nil && *t.SampleRate <= 0 {
		t.SampleRate = nil
	}
	return t
}

func coercePlaylist(p models.Playlist) models.Playlist {
	if p.Kind != models.KindFolder && p.Kind != models.KindPlaylist {
		p.Kind = models.KindPlaylist
	}
	// Track references are only meaningful for leaf playlists
	if p.Kind == models.KindFolder {
		p.Tracks = nil
	}
	if p.Name == "" {
		p.Name = "Unnamed"
	}
	if p.ReportedCount != nil && *p.ReportedCount < 0 {
		p.ReportedCount = nil
	}
	return p
}

// checkAcyclic walks every playlist's parent chain and rejects cycles.
// Without this, depth-by-parent-walk would loop forever on bad input.
func checkAcyclic(playlists []models.Playlist, index map[string]int) error {
	for i := range playlists {
		visited := map[string]struct{}{playlists[i].ID: {}}
		cur := playlists[i]
		for cur.ParentID != nil {
			next := playlists[index[*cur.ParentID]]
			if _, looped := visited[next.ID]; looped {
				return errAt(
					fmt.Sprintf("playlists[%d].parent_id", i),
					"parent references form a cycle through %q", next.ID)
			}
			visited[next.ID] = struct{}{}
			cur = next
		}
	}
	return nil
}

func defaultIfBlank(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func cleanOptString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	if trimmed == *s {
		return s
	}
	return &trimmed
}

func cleanGenres(genres []string) []string {
	var out []string
	for _, g := range genres {
		if trimmed := strings.TrimSpace(g); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
