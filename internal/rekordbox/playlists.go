// file: internal/rekordbox/playlists.go
// version: 1.1.0
// guid: 0d1e2f3a-4b5c-6d7e-8f9a-0b1c2d3e4f5a

package rekordbox

import (
	"crypto/rand"
	"fmt"
	mathrand "math/rand"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"github.com/cratestats/cratestats/internal/models"
	"github.com/cratestats/cratestats/internal/xmldoc"
)

// Playlist node attribute names as written by rekordbox
const (
	nodeElem        = "NODE"
	trackRefElem    = "TRACK"
	attrNodeType    = "Type"
	attrNodeCount   = "Count"
	attrNodeEntries = "Entries"
	attrTrackKey    = "Key"

	// rekordbox writes Type="0" for folders, Type="1" for leaf playlists
	folderTypeMarker = "0"
)

// IDGenerator produces synthetic playlist identities. Implementations must
// return a fresh unique value per call within one parse run. It is
// injectable so tests can supply a deterministic sequence.
type IDGenerator func() string

// NewULIDGenerator returns the default generator. ULIDs come from a
// monotonic entropy source; if ULID construction ever fails the generator
// falls back to a timestamp-plus-random string, which still satisfies
// per-run uniqueness.
func NewULIDGenerator() IDGenerator {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return func() string {
		id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
		if err != nil {
			return fmt.Sprintf("pl-%d-%04d", time.Now().UnixNano(), mathrand.Intn(10000))
		}
		return id.String()
	}
}

// buildPlaylists flattens the playlist forest beneath root into a
// parent-referencing list. The root container node itself is not emitted;
// traversal is depth-first pre-order, so a folder always appears before
// its descendants.
func buildPlaylists(root *xmldoc.Node, nextID IDGenerator) []models.Playlist {
	var out []models.Playlist
	for _, child := range root.ChildrenNamed(nodeElem) {
		out = appendNode(out, child, nil, nextID)
	}
	return out
}

// appendNode emits one node and then recurses into its children
func appendNode(out []models.Playlist, node *xmldoc.Node, parentID *string, nextID IDGenerator) []models.Playlist {
	id := nextID()

	kind := models.KindPlaylist
	if marker, ok := node.Attr(attrNodeType); ok && marker == folderTypeMarker {
		kind = models.KindFolder
	}

	pl := models.Playlist{
		ID:       id,
		Name:     stringOr(attrOf(node, attrName), "Unnamed"),
		Kind:     kind,
		ParentID: parentID,
	}

	// Reported count: folders carry Count, playlists carry Entries. The
	// value is preserved as reported even when it disagrees with the
	// actual child or track count.
	if v, ok := node.Attr(attrNodeCount); ok {
		pl.ReportedCount = nonNegativeInt(v)
	} else if v, ok := node.Attr(attrNodeEntries); ok {
		pl.ReportedCount = nonNegativeInt(v)
	}

	if kind == models.KindPlaylist {
		for _, ref := range node.ChildrenNamed(trackRefElem) {
			if key, ok := ref.Attr(attrTrackKey); ok && key != "" {
				pl.Tracks = append(pl.Tracks, key)
			}
		}
	}

	out = append(out, pl)
	for _, child := range node.ChildrenNamed(nodeElem) {
		out = appendNode(out, child, &id, nextID)
	}
	return out
}

func attrOf(node *xmldoc.Node, name string) string {
	v, _ := node.Attr(name)
	return v
}

// PlaylistDepth reports how many parents sit above the given playlist,
// walking ParentID references until one is absent. O(depth) per call;
// callers needing depth repeatedly should cache the result. The schema
// validator guarantees the forest is acyclic, so the walk terminates.
func PlaylistDepth(playlists []models.Playlist, id string) int {
	byID := make(map[string]models.Playlist, len(playlists))
	for _, p := range playlists {
		byID[p.ID] = p
	}

	depth := 0
	cur, ok := byID[id]
	for ok && cur.ParentID != nil {
		depth++
		cur, ok = byID[*cur.ParentID]
	}
	return depth
}
