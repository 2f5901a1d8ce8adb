// file: internal/rekordbox/normalize_test.go
// version: 1.1.0
// guid: c3d4e5f6-a7b8-9c0d-1e2f-3a4b5c6d7e8f

package rekordbox

import (
	"testing"
	"time"

	"github.com/cratestats/cratestats/internal/xmldoc"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func trackNode(attrs map[string]string) *xmldoc.Node {
	return &xmldoc.Node{Name: trackElem, Attrs: attrs}
}

func TestNormalizeTrackDefaults(t *testing.T) {
	track := normalizeTrack(trackNode(map[string]string{
		attrTrackID: "42",
	}), testNow)

	if track.ID != "42" {
		t.Errorf("ID = %q, expected 42", track.ID)
	}
	if track.Title != "Unknown" || track.Artist != "Unknown" {
		t.Errorf("missing title/artist = %q/%q, expected Unknown/Unknown", track.Title, track.Artist)
	}
	if track.Album != nil || track.BPM != nil || track.Rating != nil || track.Year != nil {
		t.Error("optional fields should be absent when attributes are missing")
	}
	if track.Genres != nil {
		t.Errorf("Genres = %v, expected absent", track.Genres)
	}
	if track.Duration != 0 {
		t.Errorf("Duration = %d, expected 0", track.Duration)
	}
	if !track.DateAdded.Equal(testNow) {
		t.Errorf("DateAdded = %v, expected parse-time now", track.DateAdded)
	}
}

func TestNormalizeTrackFullRecord(t *testing.T) {
	track := normalizeTrack(trackNode(map[string]string{
		attrTrackID:     "1001",
		attrName:        "One More Time",
		attrArtist:      "Daft Punk",
		attrAlbum:       "Discovery",
		attrGenre:       "House; French House",
		attrBPM:         "123.00",
		attrTotalTime:   "320",
		attrDateAdded:   "2021-03-12",
		attrTonality:    "8B",
		attrPlayCount:   "57",
		attrRating:      "5",
		attrLocation:    "file://localhost/Users/dj/Music/one-more-time.mp3",
		attrTrackNumber: "1",
		attrYear:        "2001",
		attrBitRate:     "320",
		attrSampleRate:  "44100",
		attrLabel:       "Virgin",
	}), testNow)

	if track.Title != "One More Time" || track.Artist != "Daft Punk" {
		t.Errorf("title/artist = %q/%q", track.Title, track.Artist)
	}
	if len(track.Genres) != 2 || track.Genres[1] != "French House" {
		t.Errorf("Genres = %v", track.Genres)
	}
	if track.BPM == nil || *track.BPM != 123.0 {
		t.Errorf("BPM = %v, expected 123", track.BPM)
	}
	if track.Key == nil || *track.Key != "8B" {
		t.Errorf("Key = %v, expected 8B", track.Key)
	}
	if track.Rating == nil || *track.Rating != 5 {
		t.Errorf("Rating = %v, expected 5", track.Rating)
	}
	if track.PlayCount == nil || *track.PlayCount != 57 {
		t.Errorf("PlayCount = %v, expected 57", track.PlayCount)
	}
	if track.Duration != 320 {
		t.Errorf("Duration = %d, expected 320", track.Duration)
	}
	if track.DateAdded.Year() != 2021 {
		t.Errorf("DateAdded = %v, expected 2021", track.DateAdded)
	}
	if track.Year == nil || *track.Year != 2001 {
		t.Errorf("Year = %v, expected 2001", track.Year)
	}
	if track.BitRate == nil || *track.BitRate != 320 || track.SampleRate == nil || *track.SampleRate != 44100 {
		t.Errorf("BitRate/SampleRate = %v/%v", track.BitRate, track.SampleRate)
	}
	if track.Label == nil || *track.Label != "Virgin" {
		t.Errorf("Label = %v, expected Virgin", track.Label)
	}
}

func TestNormalizeTrackDegradedFields(t *testing.T) {
	track := normalizeTrack(trackNode(map[string]string{
		attrTrackID:   "7",
		attrBPM:       "0",
		attrRating:    "11",
		attrYear:      "1776",
		attrTotalTime: "-5",
		attrDateAdded: "last tuesday",
		attrBitRate:   "-320",
	}), testNow)

	if track.BPM != nil {
		t.Errorf("BPM %v from \"0\", expected absent", *track.BPM)
	}
	if track.Rating != nil {
		t.Errorf("Rating %v out of [0,5], expected absent", *track.Rating)
	}
	if track.Year != nil {
		t.Errorf("Year %v out of [1900,2100], expected absent", *track.Year)
	}
	if track.Duration != 0 {
		t.Errorf("negative duration = %d, expected 0", track.Duration)
	}
	if !track.DateAdded.Equal(testNow) {
		t.Errorf("DateAdded = %v, expected fallback to now", track.DateAdded)
	}
	if track.BitRate != nil {
		t.Errorf("BitRate %v from negative input, expected absent", *track.BitRate)
	}
}

func TestNormalizeTrackNonNumericBPM(t *testing.T) {
	track := normalizeTrack(trackNode(map[string]string{
		attrTrackID: "8",
		attrBPM:     "abc",
	}), testNow)
	if track.BPM != nil {
		t.Errorf("BPM = %v from \"abc\", expected absent", *track.BPM)
	}
}
