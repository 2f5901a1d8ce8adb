// file: internal/rekordbox/parser.go
// version: 1.4.0
// guid: 1e2f3a4b-5c6d-7e8f-9a0b-1c2d3e4f5a6b

// Package rekordbox ingests a rekordbox-style library export (DJ_PLAYLISTS
// XML) and produces a normalized models.Library. Parsing is tolerant:
// individual malformed fields degrade to defaults, and only missing
// mandatory sections or a missing track identity abort the parse.
package rekordbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cratestats/cratestats/internal/models"
	"github.com/cratestats/cratestats/internal/validate"
	"github.com/cratestats/cratestats/internal/xmldoc"
)

// Top-level element names of the export schema
const (
	productElem    = "PRODUCT"
	collectionElem = "COLLECTION"
	playlistsElem  = "PLAYLISTS"
	trackElem      = "TRACK"

	attrVersion = "Version"
	attrEntries = "Entries"
)

// Parse stages with their fixed progress percentages. Progress is
// advisory only and has no effect on pipeline correctness.
const (
	StageRead      = "reading file"
	StageDecode    = "decoding XML"
	StageTracks    = "normalizing tracks"
	StagePlaylists = "normalizing playlists"
	StageValidated = "validation complete"

	PercentRead      = 10
	PercentDecode    = 40
	PercentTracks    = 70
	PercentPlaylists = 90
	PercentValidated = 100
)

// ProgressFunc receives coarse-grained stage updates during a parse
type ProgressFunc func(percent int, stage string)

// Parser converts a library export into a validated Library. The zero
// value is not usable; construct with NewParser.
type Parser struct {
	// NewID generates synthetic playlist identities. Defaults to ULIDs;
	// tests inject a deterministic sequence.
	NewID IDGenerator

	// Progress, when set, is called once per completed stage.
	Progress ProgressFunc

	// now is stubbed in tests so date defaulting is reproducible
	now func() time.Time
}

// NewParser returns a Parser with production defaults
func NewParser() *Parser {
	return &Parser{
		NewID: NewULIDGenerator(),
		now:   time.Now,
	}
}

// ParseFile reads and parses a library export from disk
func (p *Parser) ParseFile(path string) (*models.Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library file: %w", err)
	}
	p.report(PercentRead, StageRead)

	lib, err := p.parse(data)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	lib.Metadata.FileName = &name
	if fi, statErr := os.Stat(path); statErr == nil {
		size := fi.Size()
		lib.Metadata.FileSize = &size
	}
	return lib, nil
}

// Parse parses an in-memory library export
func (p *Parser) Parse(data []byte) (*models.Library, error) {
	p.report(PercentRead, StageRead)
	return p.parse(data)
}

func (p *Parser) parse(data []byte) (*models.Library, error) {
	root, err := xmldoc.Decode(data)
	if err != nil {
		return nil, err
	}
	p.report(PercentDecode, StageDecode)

	now := p.now()

	collection := root.FirstChild(collectionElem)
	if collection == nil {
		return nil, xmldoc.NewStructuralError("document has no COLLECTION section", nil)
	}

	meta := models.LibraryMetadata{
		Producer: "unknown",
		ParsedAt: now,
	}
	if v, ok := root.Attr(attrVersion); ok {
		meta.Version = v
	}
	if product := root.FirstChild(productElem); product != nil {
		if v, ok := product.Attr(attrName); ok && v != "" {
			meta.Producer = v
		}
		if v, ok := product.Attr(attrVersion); ok && v != "" {
			meta.Version = v
		}
	}
	// The reported entry count is kept as reported; it may disagree with
	// the number of tracks that actually parse.
	if v, ok := collection.Attr(attrEntries); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			meta.TrackCount = n
		}
	}

	trackNodes := collection.ChildrenNamed(trackElem)
	tracks := make([]models.Track, 0, len(trackNodes))
	for i, node := range trackNodes {
		if id, ok := node.Attr(attrTrackID); !ok || id == "" {
			return nil, xmldoc.NewStructuralError(
				fmt.Sprintf("track %d has no TrackID attribute", i), nil)
		}
		tracks = append(tracks, normalizeTrack(node, now))
	}
	if meta.TrackCount == 0 {
		meta.TrackCount = len(tracks)
	}
	p.report(PercentTracks, StageTracks)

	var playlists []models.Playlist
	if container := root.FirstChild(playlistsElem); container != nil {
		// The export nests the whole forest beneath a single ROOT node;
		// fall back to the container itself when that wrapper is absent.
		forest := container.FirstChild(nodeElem)
		if forest == nil {
			forest = container
		}
		playlists = buildPlaylists(forest, p.NewID)
	}
	p.report(PercentPlaylists, StagePlaylists)

	lib, err := validate.Library(models.Library{
		Tracks:    tracks,
		Playlists: playlists,
		Metadata:  meta,
	})
	if err != nil {
		return nil, err
	}
	p.report(PercentValidated, StageValidated)

	return &lib, nil
}

func (p *Parser) report(percent int, stage string) {
	if p.Progress != nil {
		p.Progress(percent, stage)
	}
}
