// Package blockio implements the buffer-and-flush adapter protocol shared
// by every third-party block-oriented codec (spec's C8): MP3, FLAC,
// Vorbis, and Opus each wrap a BufferedEncoder/BufferedDecoder instead of
// reimplementing sample buffering, channel validation, and idempotent
// finish semantics.
package blockio

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrChannelsUnsupported is returned when a codec's channel-count
// constraint (spec §4.7: mono-only, 1-2, 1-8, 1-255, ...) is violated.
type ErrChannelsUnsupported struct {
	Codec    string
	Channels int
	Min, Max int
}

func (e *ErrChannelsUnsupported) Error() string {
	return fmt.Sprintf("blockio: %s supports %d-%d channels, got %d", e.Codec, e.Min, e.Max, e.Channels)
}

// ValidateChannels enforces a codec's channel-count range at construction.
func ValidateChannels(codec string, channels, minCh, maxCh int) error {
	if channels < minCh || channels > maxCh {
		return &ErrChannelsUnsupported{Codec: codec, Channels: channels, Min: minCh, Max: maxCh}
	}

	return nil
}

// Sample is the numeric sample representation a codec adapter buffers:
// int16 for MP3/Opus/ADPCM-derived PCM, int32 for FLAC's wider native
// depths.
type Sample interface {
	~int16 | ~int32
}

// Downmix averages a stereo pair to mono: mono := (L+R)/2 (spec §4.7).
func Downmix[S Sample](l, r S) S {
	return S((int64(l) + int64(r)) / 2)
}

// Duplicate widens a mono sample to a stereo pair: dup := (m, m) (spec §4.7).
func Duplicate[S Sample](m S) (S, S) {
	return m, m
}

// FlushFunc encodes one accumulated chunk of interleaved samples into a
// variable-size byte payload, ready to write to the data chunk.
type FlushFunc[S Sample] func(chunk []S) ([]byte, error)

// BufferedEncoder accumulates interleaved samples up to maxSamples, calling
// flush whenever the buffer fills and once more (on whatever remains) when
// Finish is called. Finish is safe to call more than once (spec §4.7:
// "finish() must be idempotent").
type BufferedEncoder[S Sample] struct {
	mu             sync.Mutex
	w              io.Writer
	maxSamples     int
	flush          FlushFunc[S]
	buf            []S
	bytesWritten   uint64
	samplesWritten uint64
	finished       bool
}

// NewBufferedEncoder constructs a BufferedEncoder writing encoded chunks to w.
func NewBufferedEncoder[S Sample](w io.Writer, maxSamples int, flush FlushFunc[S]) *BufferedEncoder[S] {
	return &BufferedEncoder[S]{w: w, maxSamples: maxSamples, flush: flush}
}

// Write buffers interleaved samples, flushing full chunks as they
// accumulate. A downstream write error short-circuits without retry (spec
// §4.7).
func (b *BufferedEncoder[S]) Write(samples []S) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return errEncoderFinished
	}

	b.buf = append(b.buf, samples...)

	for len(b.buf) >= b.maxSamples {
		if err := b.flushChunk(b.buf[:b.maxSamples]); err != nil {
			return err
		}

		b.buf = b.buf[b.maxSamples:]
	}

	return nil
}

func (b *BufferedEncoder[S]) flushChunk(chunk []S) error {
	out, err := b.flush(chunk)
	if err != nil {
		return fmt.Errorf("blockio: encoding chunk: %w", err)
	}

	n, err := b.w.Write(out)
	b.bytesWritten += uint64(n) //nolint:gosec // n is always >= 0.

	if err != nil {
		return fmt.Errorf("blockio: writing encoded chunk: %w", err)
	}

	b.samplesWritten += uint64(len(chunk))

	return nil
}

var errEncoderFinished = errors.New("blockio: encoder already finished")

// Finish drains any buffered samples through flush exactly once; subsequent
// calls are no-ops.
func (b *BufferedEncoder[S]) Finish() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return nil
	}

	b.finished = true

	if len(b.buf) == 0 {
		return nil
	}

	remaining := b.buf
	b.buf = nil

	return b.flushChunk(remaining)
}

// Stats returns the total bytes and samples written so far, the basis for
// the post-finish byte_rate/block_align recomputation spec §4.7 requires.
func (b *BufferedEncoder[S]) Stats() (bytesWritten, samplesWritten uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.bytesWritten, b.samplesWritten
}

// EscortedWriter mutex-guards an io.Writer shared between the adapter's own
// Write calls and a third-party codec library's callback-driven writes
// (FLAC and Vorbis encoders may seek back and patch their own header after
// emitting audio frames).
type EscortedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEscortedWriter wraps w for mutex-escorted access.
func NewEscortedWriter(w io.Writer) *EscortedWriter {
	return &EscortedWriter{w: w}
}

// Write implements io.Writer under the escort mutex.
func (e *EscortedWriter) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.w.Write(p)
	if err != nil {
		return n, fmt.Errorf("blockio: escorted write: %w", err)
	}

	return n, nil
}

// WriteSeeker is the subset of io.WriteSeeker an escorted codec callback
// needs to patch its own in-band header after the fact.
type WriteSeeker interface {
	io.Writer
	io.Seeker
}

// EscortedWriteSeeker is EscortedWriter plus Seek, for codecs (FLAC) whose
// library writes its own frame header via seek-write-tell callbacks.
type EscortedWriteSeeker struct {
	mu sync.Mutex
	ws WriteSeeker
}

// NewEscortedWriteSeeker wraps ws for mutex-escorted access.
func NewEscortedWriteSeeker(ws WriteSeeker) *EscortedWriteSeeker {
	return &EscortedWriteSeeker{ws: ws}
}

// Write implements io.Writer under the escort mutex.
func (e *EscortedWriteSeeker) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.ws.Write(p)
	if err != nil {
		return n, fmt.Errorf("blockio: escorted write: %w", err)
	}

	return n, nil
}

// Seek implements io.Seeker under the escort mutex.
func (e *EscortedWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.ws.Seek(offset, whence)
	if err != nil {
		return n, fmt.Errorf("blockio: escorted seek: %w", err)
	}

	return n, nil
}
