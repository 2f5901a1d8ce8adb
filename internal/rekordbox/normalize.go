// file: internal/rekordbox/normalize.go
// version: 1.2.0
// guid: 9c0d1e2f-3a4b-5c6d-7e8f-9a0b1c2d3e4f

package rekordbox

import (
	"time"

	"github.com/cratestats/cratestats/internal/models"
	"github.com/cratestats/cratestats/internal/xmldoc"
)

// Track attribute names as written by rekordbox
const (
	attrTrackID     = "TrackID"
	attrName        = "Name"
	attrArtist      = "Artist"
	attrAlbum       = "Album"
	attrGenre       = "Genre"
	attrBPM         = "AverageBpm"
	attrTotalTime   = "TotalTime"
	attrDateAdded   = "DateAdded"
	attrTonality    = "Tonality"
	attrPlayCount   = "PlayCount"
	attrRating      = "Rating"
	attrLocation    = "Location"
	attrTrackNumber = "TrackNumber"
	attrYear        = "Year"
	attrComments    = "Comments"
	attrBitRate     = "BitRate"
	attrSampleRate  = "SampleRate"
	attrLabel       = "Label"
	attrRemixer     = "Remixer"
	attrComposer    = "Composer"
	attrGrouping    = "Grouping"
)

// unknownField is the default for a missing title or artist
const unknownField = "Unknown"

// normalizeTrack maps one raw TRACK element into a typed Track. It never
// fails: malformed fields degrade to their defaults so a single bad track
// cannot abort the whole parse. Only a structurally absent TrackID is
// fatal, and that is checked by the caller before normalization.
func normalizeTrack(node *xmldoc.Node, now time.Time) models.Track {
	attr := func(name string) string {
		v, _ := node.Attr(name)
		return v
	}

	track := models.Track{
		ID:          attr(attrTrackID),
		Title:       stringOr(attr(attrName), unknownField),
		Artist:      stringOr(attr(attrArtist), unknownField),
		Album:       nonEmpty(attr(attrAlbum)),
		Genres:      SplitGenres(attr(attrGenre)),
		BPM:         positiveFloat(attr(attrBPM)),
		Key:         nonEmpty(attr(attrTonality)),
		Rating:      boundedInt(attr(attrRating), 0, 5),
		PlayCount:   nonNegativeInt(attr(attrPlayCount)),
		Duration:    durationSeconds(attr(attrTotalTime)),
		DateAdded:   dateOrNow(attr(attrDateAdded), now),
		Location:    attr(attrLocation),
		TrackNumber: positiveInt(attr(attrTrackNumber)),
		Year:        boundedInt(attr(attrYear), 1900, 2100),
		Comments:    nonEmpty(attr(attrComments)),
		Tonality:    nonEmpty(attr(attrTonality)),
		Label:       nonEmpty(attr(attrLabel)),
		Remixer:     nonEmpty(attr(attrRemixer)),
		Composer:    nonEmpty(attr(attrComposer)),
		Grouping:    nonEmpty(attr(attrGrouping)),
		BitRate:     positiveInt(attr(attrBitRate)),
		SampleRate:  positiveInt(attr(attrSampleRate)),
	}

	return track
}
