package wave

import (
	"errors"
	"fmt"
	"io"
)

// sectionReadSeeker presents a bounded [base, base+size) window of an
// underlying io.ReadSeeker as its own zero-based io.ReadSeeker, the view
// every data-chunk codec adapter decodes from (spec §4.2's "offset and
// length" reader construction). Every Read repositions the shared
// underlying handle first: correct under the single-threaded-cooperative
// access model spec §5 assumes, at the cost of a redundant seek when reads
// are already sequential.
type sectionReadSeeker struct {
	rs   io.ReadSeeker
	base int64
	size int64
	pos  int64
}

func newSectionReadSeeker(rs io.ReadSeeker, base, size int64) *sectionReadSeeker {
	return &sectionReadSeeker{rs: rs, base: base, size: size}
}

func (s *sectionReadSeeker) Read(p []byte) (int, error) {
	if s.pos >= s.size {
		return 0, io.EOF
	}

	if max := s.size - s.pos; int64(len(p)) > max {
		p = p[:max]
	}

	if _, err := s.rs.Seek(s.base+s.pos, io.SeekStart); err != nil {
		return 0, fmt.Errorf("wave: seeking section reader: %w", err)
	}

	n, err := s.rs.Read(p)
	s.pos += int64(n)

	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("wave: reading section: %w", err)
	}

	return n, err //nolint:wrapcheck // io.EOF passed through verbatim.
}

func (s *sectionReadSeeker) Seek(offset int64, whence int) (int64, error) {
	var newPos int64

	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = s.pos + offset
	case io.SeekEnd:
		newPos = s.size + offset
	default:
		return 0, fmt.Errorf("wave: invalid whence %d", whence)
	}

	if newPos < 0 {
		return 0, fmt.Errorf("wave: negative seek position %d", newPos)
	}

	s.pos = newPos

	return newPos, nil
}
