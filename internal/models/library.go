// file: internal/models/library.go
// version: 1.3.0
// guid: 4c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

package models

import "time"

// PlaylistKind distinguishes folder nodes from leaf playlists
type PlaylistKind string

const (
	KindFolder   PlaylistKind = "folder"
	KindPlaylist PlaylistKind = "playlist"
)

// Track represents a single track parsed from a DJ library export
type Track struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Album       *string   `json:"album,omitempty"`
	Genres      []string  `json:"genres,omitempty"`
	BPM         *float64  `json:"bpm,omitempty"`
	Key         *string   `json:"key,omitempty"` // Camelot-style notation, kept verbatim
	Rating      *int      `json:"rating,omitempty"`
	PlayCount   *int      `json:"play_count,omitempty"`
	Duration    int       `json:"duration_seconds"`
	DateAdded   time.Time `json:"date_added"`
	Location    string    `json:"location"`
	TrackNumber *int      `json:"track_number,omitempty"`
	Year        *int      `json:"year,omitempty"`
	Comments    *string   `json:"comments,omitempty"`
	Tonality    *string   `json:"tonality,omitempty"`
	Label       *string   `json:"label,omitempty"`
	Remixer     *string   `json:"remixer,omitempty"`
	Composer    *string   `json:"composer,omitempty"`
	Grouping    *string   `json:"grouping,omitempty"`
	BitRate     *int      `json:"bit_rate,omitempty"`
	SampleRate  *int      `json:"sample_rate,omitempty"`
}

// Playlist represents one node of the playlist forest, flattened.
// ParentID is nil for root-level nodes. Tracks holds referenced track IDs
// and is always empty for folders. ReportedCount is whatever the source
// document claimed (child count for folders, track count for playlists)
// and may diverge from the actual length; it is preserved, not recomputed.
type Playlist struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Kind          PlaylistKind `json:"kind"`
	ParentID      *string      `json:"parent_id,omitempty"`
	Tracks        []string     `json:"tracks,omitempty"`
	ReportedCount *int         `json:"reported_count,omitempty"`
}

// LibraryMetadata describes the source document of a parsed library
type LibraryMetadata struct {
	Version    string    `json:"version"`
	Producer   string    `json:"producer"`
	TrackCount int       `json:"track_count"` // count reported by the source, not len(Tracks)
	ParsedAt   time.Time `json:"parsed_at"`
	FileName   *string   `json:"file_name,omitempty"`
	FileSize   *int64    `json:"file_size,omitempty"`
}

// Library is the normalized, validated model of one library export.
// Immutable after a successful parse; replaced wholesale on re-parse.
type Library struct {
	Tracks    []Track         `json:"tracks"`
	Playlists []Playlist      `json:"playlists"`
	Metadata  LibraryMetadata `json:"metadata"`
}

// CountEntry is one bucket of a labeled distribution
type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RatingEntry is one bucket of the rating distribution
type RatingEntry struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// GrowthEntry is one month of the cumulative growth timeline
type GrowthEntry struct {
	Month string `json:"month"` // "2006-01"
	Count int    `json:"count"` // cumulative through this month
}

// DuplicateGroup is a set of tracks sharing a normalized artist+title key
type DuplicateGroup struct {
	Key    string  `json:"key"`
	Tracks []Track `json:"tracks"`
}

// LibraryStats is a snapshot of aggregates derived from a Library.
// It is a pure function of the library and carries no lifecycle of its
// own; recompute it whenever the library is replaced.
type LibraryStats struct {
	TotalTracks        int              `json:"total_tracks"`
	TotalPlaylists     int              `json:"total_playlists"` // kind == playlist only
	UniqueArtists      int              `json:"unique_artists"`
	UniqueGenres       int              `json:"unique_genres"`
	AverageBPM         float64          `json:"average_bpm"`
	TotalDurationHours float64          `json:"total_duration_hours"`
	GenreDistribution  []CountEntry     `json:"genre_distribution"`
	BPMDistribution    []CountEntry     `json:"bpm_distribution"`
	KeyDistribution    []CountEntry     `json:"key_distribution"`
	RatingDistribution []RatingEntry    `json:"rating_distribution"`
	GrowthTimeline     []GrowthEntry    `json:"growth_timeline"`
	Duplicates         []DuplicateGroup `json:"duplicates,omitempty"`
	GeneratedAt        time.Time        `json:"generated_at"`
}
