// Package waveerr collects the read- and write-path error taxonomy spec §7
// defines. The wave package returns these types so callers can type-switch
// on a stable error surface; the lower-level packages (riff, chunkio,
// pcmcodec, adpcm, blockio and the codec adapters) return their own error
// types, which wave converts or wraps.
package waveerr

import "fmt"

// FormatError signals an envelope or flag mismatch recoverable only by
// trying a different parser entirely.
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string { return fmt.Sprintf("format error: %s", e.Message) }

// Unimplemented signals a codec present in the container whose adapter is
// not compiled in, or write-side support intentionally not built (spec's
// own non-goal: MP3/FLAC/Vorbis encode).
type Unimplemented struct {
	Codec  string
	Detail string
}

func (e *Unimplemented) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unimplemented: %s", e.Codec)
	}

	return fmt.Sprintf("unimplemented: %s: %s", e.Codec, e.Detail)
}

// IncompleteFile signals EOF encountered before a chunk header or body
// finished reading.
type IncompleteFile struct {
	Offset int64
}

func (e *IncompleteFile) Error() string {
	return fmt.Sprintf("incomplete file: truncated at offset %d", e.Offset)
}

// InvalidData signals a structurally valid envelope whose contents are
// semantically broken: a duplicate fmt or ds64 chunk, an RF64 data chunk
// ahead of its ds64, or an out-of-range ADPCM predictor index. A fact chunk
// of unrecognized size is not one of these: the reader logs it and reads
// the sample count as 0.
type InvalidData struct {
	Message string
}

func (e *InvalidData) Error() string { return fmt.Sprintf("invalid data: %s", e.Message) }

// MissingData signals a required chunk absent from the container: fmt,
// data, or ds64 when the envelope is RF64.
type MissingData struct {
	Name string
}

func (e *MissingData) Error() string { return fmt.Sprintf("missing required chunk: %s", e.Name) }

// UnexpectedFlag signals a chunk ID or envelope flag that didn't match what
// the reader required at that position (e.g. WAVE immediately after RIFF).
type UnexpectedFlag struct {
	Expected, Got string
}

func (e *UnexpectedFlag) Error() string {
	return fmt.Sprintf("unexpected flag: expected %q, got %q", e.Expected, e.Got)
}

// InvalidArguments signals a Spec inconsistent with the chosen data format
// (e.g. MP3 with 5 channels).
type InvalidArguments struct {
	Message string
}

func (e *InvalidArguments) Error() string { return fmt.Sprintf("invalid arguments: %s", e.Message) }

// NotPreparedFor4GBFile signals a FileSizePolicy violation discovered at
// finish: the data size exceeded 4 GiB under NeverLargerThan4GB.
type NotPreparedFor4GBFile struct {
	DataSize uint64
}

func (e *NotPreparedFor4GBFile) Error() string {
	return fmt.Sprintf("not prepared for 4GB+ file: data size %d exceeds 0xFFFFFFFE under NeverLargerThan4GB", e.DataSize)
}

// ChunkSizeTooBig signals a single chunk exceeding 4 GiB while not writing
// in RF64 form.
type ChunkSizeTooBig struct {
	ID   string
	Size uint64
}

func (e *ChunkSizeTooBig) Error() string {
	return fmt.Sprintf("chunk %q size %d exceeds 4GiB outside RF64", e.ID, e.Size)
}

// AlreadyFinished signals a write call after Finish.
type AlreadyFinished struct{}

func (e *AlreadyFinished) Error() string { return "write after finish" }

// WrongChannels signals a batch write whose frame/channel shape doesn't
// match the writer's configured channel count.
type WrongChannels struct {
	Want, Got int
}

func (e *WrongChannels) Error() string {
	return fmt.Sprintf("wrong channel count: want %d, got %d", e.Want, e.Got)
}

// TruncatedSamples signals a batch write whose per-channel slices are of
// unequal length.
type TruncatedSamples struct{}

func (e *TruncatedSamples) Error() string { return "truncated samples: per-channel lengths differ" }
