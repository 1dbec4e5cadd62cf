// Package mp3 decodes MP3 audio to interleaved 16-bit PCM using a pure-Go
// decoder, trimming LAME/Xing gapless padding so loop points line up with
// the original encode. Encoding is not supported: spec's own non-goals
// exclude MP3 write support, so this package is decode-only.
package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/farcloser/wavecraft/blockio"
	"github.com/farcloser/wavecraft/classify"
)

const (
	channels       = 2 // go-mp3 always decodes to stereo.
	bytesPerSample = 2 // 16-bit.
	bytesPerFrame  = channels * bytesPerSample

	// MP3 frame contains 1152 samples for MPEG1 Layer III.
	samplesPerFrame = 1152

	// go-mp3's synthesis filterbank priming delay, empirically measured
	// as the gap between its output and what the LAME header expects.
	decoderDelay = 529

	lowSampleRateBlockAlign  = 576
	highSampleRateBlockAlign = 1152
	lowSampleRateCutoff      = 28000
)

// Data is the fmt-chunk extension carried alongside an MP3 stream: the
// bitrate recovered from the first frame header (0 if it could not be
// determined) and the decoder's native sample rate.
type Data struct {
	Bitrate    uint32
	SampleRate uint32
}

// gaplessInfo contains encoder delay and padding from a LAME header.
type gaplessInfo struct {
	delay      int  // samples to skip at start (LAME encoder delay).
	padding    int  // samples to skip at end (LAME padding).
	hasXINGTag bool // true if an XING/Info frame is present (adds samplesPerFrame to output).
}

// Decoder pulls interleaved 16-bit PCM out of an MP3 stream through a
// blockio.BufferedDecoder, so callers consume it the same way as every
// other block-oriented codec adapter.
type Decoder struct {
	data Data
	pull *blockio.BufferedDecoder[int16]
}

// NewDecoder eagerly decodes rs to PCM, trims LAME/Xing gapless padding,
// and returns a Decoder exposing the result as a pull-based sample stream.
func NewDecoder(rs io.ReadSeeker) (*Decoder, error) {
	gapless, bitrate := parseGaplessInfo(rs)

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("mp3: seeking to start: %w", err)
	}

	decoder, err := gomp3.NewDecoder(rs)
	if err != nil {
		return nil, fmt.Errorf("mp3: creating decoder: %w", err)
	}

	var buf []byte
	if length := decoder.Length(); length > 0 {
		buf = make([]byte, 0, length)
	}

	chunk := make([]byte, 32*1024)

	for {
		readN, readErr := decoder.Read(chunk)
		if readN > 0 {
			buf = append(buf, chunk[:readN]...)
		}

		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return nil, fmt.Errorf("mp3: decoding: %w", readErr)
		}
	}

	buf = applyGaplessTrimming(buf, gapless)

	samples := make([]int16, len(buf)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2])) //nolint:gosec // truncation is the bit reinterpretation PCM16 requires.
	}

	delivered := false

	pull := blockio.NewBufferedDecoder(func() ([]int16, error) {
		if delivered {
			return nil, io.EOF
		}

		delivered = true

		return samples, nil
	})

	return &Decoder{
		data: Data{
			Bitrate:    bitrate,
			SampleRate: uint32(decoder.SampleRate()), //nolint:gosec // sample rates never approach int32 overflow.
		},
		pull: pull,
	}, nil
}

// Read pulls up to len(dst) interleaved samples; see blockio.BufferedDecoder.Read.
func (d *Decoder) Read(dst []int16) (int, error) {
	return d.pull.Read(dst)
}

// Data returns the bitrate/sample-rate pair to attach as fmt-chunk extension.
func (d *Decoder) Data() Data {
	return d.data
}

// BlockAlign implements the spec's MP3 fmt-chunk rule: 576 at or below
// 28kHz, 1152 above it.
func BlockAlign(sampleRate uint32) uint16 {
	if sampleRate <= lowSampleRateCutoff {
		return lowSampleRateBlockAlign
	}

	return highSampleRateBlockAlign
}

// FormatTag is the fmt-chunk format_tag value for MP3 streams.
func FormatTag() uint16 {
	return classify.TagMP3
}

// applyGaplessTrimming removes encoder delay from the start and padding
// from the end, accounting for the Xing/Info frame (if present) being
// decoded as audio and for go-mp3's own synthesis-filterbank priming delay.
func applyGaplessTrimming(buf []byte, info gaplessInfo) []byte {
	if info.delay == 0 && info.padding == 0 && !info.hasXINGTag {
		return buf
	}

	startSamples := info.delay + decoderDelay
	if info.hasXINGTag {
		startSamples += samplesPerFrame
	}

	endSamples := max(info.padding-decoderDelay, 0)

	startBytes := startSamples * bytesPerFrame
	endBytes := endSamples * bytesPerFrame
	totalTrim := startBytes + endBytes

	if totalTrim >= len(buf) {
		return buf
	}

	return buf[startBytes : len(buf)-endBytes]
}

// mpeg1BitrateKbps is the MPEG1 Layer III bitrate index table (index 0 is
// "free", 15 is invalid); both map to an unknown bitrate of 0.
var mpeg1BitrateKbps = [16]uint32{
	0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0,
}

// parseGaplessInfo attempts to extract LAME encoder delay/padding and the
// nominal bitrate of the first frame. Zero values mean "not found".
func parseGaplessInfo(rs io.ReadSeeker) (gaplessInfo, uint32) {
	id3Size := skipID3v2(rs)
	if id3Size < 0 {
		return gaplessInfo{}, 0
	}

	header := make([]byte, 4096)

	n, err := rs.Read(header)
	if err != nil || n < 256 {
		return gaplessInfo{}, 0
	}

	header = header[:n]

	syncPos := findSyncWord(header)
	if syncPos < 0 || syncPos+4 > len(header) {
		return gaplessInfo{}, 0
	}

	frameHeader := header[syncPos : syncPos+4]
	bitrate := mpeg1BitrateKbps[(frameHeader[2]>>4)&0x0F] * 1000

	sideInfoSize := getSideInfoSize(frameHeader)
	if sideInfoSize < 0 {
		return gaplessInfo{}, bitrate
	}

	xingOffset := syncPos + 4 + sideInfoSize
	if xingOffset+120 > len(header) {
		return gaplessInfo{}, bitrate
	}

	xingData := header[xingOffset:]
	if !bytes.HasPrefix(xingData, []byte("Xing")) && !bytes.HasPrefix(xingData, []byte("Info")) {
		return gaplessInfo{}, bitrate
	}

	hasXING := true

	lameOffset := findLAMETag(xingData)
	if lameOffset < 0 || lameOffset+24 > len(xingData) {
		return gaplessInfo{hasXINGTag: hasXING}, bitrate
	}

	lameData := xingData[lameOffset:]
	if len(lameData) < 24 {
		return gaplessInfo{hasXINGTag: hasXING}, bitrate
	}

	gaplessBytes := lameData[21:24]
	gapless24 := uint32(gaplessBytes[0])<<16 | uint32(gaplessBytes[1])<<8 | uint32(gaplessBytes[2])

	return gaplessInfo{
		delay:      int(gapless24 >> 12),
		padding:    int(gapless24 & 0xFFF),
		hasXINGTag: hasXING,
	}, bitrate
}

// skipID3v2 skips past any ID3v2 tag at the start of the file, returning
// its size (0 if none) or -1 on error.
func skipID3v2(rs io.ReadSeeker) int {
	header := make([]byte, 10)

	n, err := rs.Read(header)
	if err != nil || n < 10 {
		_, _ = rs.Seek(0, io.SeekStart)

		return 0
	}

	if header[0] != 'I' || header[1] != 'D' || header[2] != '3' {
		_, _ = rs.Seek(0, io.SeekStart)

		return 0
	}

	size := (int(header[6]) << 21) | (int(header[7]) << 14) | (int(header[8]) << 7) | int(header[9])
	totalSize := 10 + size

	if _, err := rs.Seek(int64(totalSize), io.SeekStart); err != nil {
		return -1
	}

	return totalSize
}

// findSyncWord locates the first MPEG audio sync word (0xFF followed by 0xE0+).
func findSyncWord(data []byte) int {
	for i := range len(data) - 1 {
		if data[i] == 0xFF && (data[i+1]&0xE0) == 0xE0 {
			if i+4 <= len(data) && isValidFrameHeader(data[i:i+4]) {
				return i
			}
		}
	}

	return -1
}

// isValidFrameHeader checks if 4 bytes form a valid MPEG audio frame header.
func isValidFrameHeader(header []byte) bool {
	if len(header) < 4 {
		return false
	}

	if header[0] != 0xFF || (header[1]&0xE0) != 0xE0 {
		return false
	}

	versionBits := (header[1] >> 3) & 0x03
	layerBits := (header[1] >> 1) & 0x03
	bitrateBits := (header[2] >> 4) & 0x0F

	if versionBits == 0x01 {
		return false
	}

	if layerBits == 0x00 {
		return false
	}

	return bitrateBits != 0x0F
}

// getSideInfoSize returns the side information size based on MPEG version
// and channel mode, or -1 if the header is invalid.
func getSideInfoSize(header []byte) int {
	if len(header) < 4 {
		return -1
	}

	versionBits := (header[1] >> 3) & 0x03
	channelBits := (header[3] >> 6) & 0x03
	isMono := channelBits == 0x03

	switch versionBits {
	case 0x03: // MPEG1.
		if isMono {
			return 17
		}

		return 32
	case 0x02, 0x00: // MPEG2 or MPEG2.5.
		if isMono {
			return 9
		}

		return 17
	default:
		return -1
	}
}

// findLAMETag locates the LAME tag within XING header data, returning its
// offset from the start of xingData or -1 if not found.
func findLAMETag(xingData []byte) int {
	if len(xingData) < 8 {
		return -1
	}

	flags := binary.BigEndian.Uint32(xingData[4:8])
	offset := 8

	if flags&0x01 != 0 {
		offset += 4 // frames
	}

	if flags&0x02 != 0 {
		offset += 4 // bytes
	}

	if flags&0x04 != 0 {
		offset += 100 // TOC
	}

	if flags&0x08 != 0 {
		offset += 4 // quality
	}

	if offset+4 > len(xingData) {
		return -1
	}

	if bytes.HasPrefix(xingData[offset:], []byte("LAME")) {
		return offset
	}

	if offset+9 <= len(xingData) && isPrintableASCII(xingData[offset:offset+4]) {
		return offset
	}

	return -1
}

// isPrintableASCII reports whether every byte is a printable ASCII character.
func isPrintableASCII(data []byte) bool {
	for _, b := range data {
		if b < 0x20 || b > 0x7E {
			return false
		}
	}

	return true
}
