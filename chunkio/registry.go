package chunkio

import "github.com/samber/lo"

// singletonIDs is the set of chunk kinds spec §4.2 requires to appear at
// most once; a second occurrence is a "warned, first wins" event rather
// than an error.
var singletonIDs = lo.SliceToMap([]string{
	"fmt ", "fact", "data", "ds64", "bext", "smpl", "inst", "cue ", "plst", "acid", "trkn", "id3 ", "axml", "iXML",
}, func(id string) (string, struct{}) { return id, struct{}{} })

// IsSingleton reports whether a chunk ID is subject to the "first wins"
// duplicate rule. LIST and unrecognized chunk kinds may legally repeat.
func IsSingleton(id string) bool {
	_, ok := singletonIDs[id]

	return ok
}

// SeenSet tracks which singleton chunk kinds a reader has already consumed,
// so it can apply the "warned, first wins" rule (spec §4.2) while walking a
// file top to bottom.
type SeenSet struct {
	seen map[string]struct{}
}

// NewSeenSet constructs an empty SeenSet.
func NewSeenSet() *SeenSet {
	return &SeenSet{seen: map[string]struct{}{}}
}

// Observe records an occurrence of id and reports whether it is a duplicate
// of a singleton chunk kind that should be skipped (with ErrDuplicateSingleton
// as the diagnostic to log) rather than applied.
func (s *SeenSet) Observe(id string) (duplicate bool, err error) {
	if !IsSingleton(id) {
		return false, nil
	}

	if _, ok := s.seen[id]; ok {
		return true, ErrDuplicateSingleton(id)
	}

	s.seen[id] = struct{}{}

	return false, nil
}
