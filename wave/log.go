package wave

import (
	"os"

	"github.com/rs/zerolog"
)

// logger is the package's diagnostic sink: non-fatal parse events (a
// duplicate singleton chunk, an unparsable optional chunk, trailing bytes
// at the envelope end) are emitted here as structured warnings rather than
// silently swallowed (spec §4.2/§7). Callers who don't care can ignore it;
// it writes to stderr by default like any other zerolog package logger.
var logger = zerolog.New(os.Stderr).With().Timestamp().Str("pkg", "wave").Logger()
