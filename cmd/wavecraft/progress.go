package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// progressLine prints a single updating frame-count line to stderr, sized
// to the terminal width so it never wraps. It's a no-op when stderr isn't
// a terminal, matching the teacher CLI's habit of keeping machine-piped
// output (stdout) free of anything but the requested bytes.
type progressLine struct {
	enabled bool
	width   int
}

func newProgressLine() *progressLine {
	fd := int(os.Stderr.Fd())

	if !term.IsTerminal(fd) {
		return &progressLine{}
	}

	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		width = 80
	}

	return &progressLine{enabled: true, width: width}
}

func (p *progressLine) update(framesDone uint64) {
	if !p.enabled {
		return
	}

	line := fmt.Sprintf("\r%d frames decoded", framesDone)
	if len(line) > p.width {
		line = line[:p.width]
	}

	fmt.Fprint(os.Stderr, line) //nolint:errcheck // best-effort terminal progress indicator.
}

func (p *progressLine) done() {
	if !p.enabled {
		return
	}

	fmt.Fprintln(os.Stderr) //nolint:errcheck // best-effort terminal progress indicator.
}
