package wave

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/farcloser/wavecraft/adpcm"
	"github.com/farcloser/wavecraft/chunkio"
	"github.com/farcloser/wavecraft/classify"
	"github.com/farcloser/wavecraft/flac"
	"github.com/farcloser/wavecraft/mp3"
	"github.com/farcloser/wavecraft/opus"
	"github.com/farcloser/wavecraft/pcmcodec"
	"github.com/farcloser/wavecraft/riff"
	"github.com/farcloser/wavecraft/vorbis"
	"github.com/farcloser/wavecraft/waveerr"
)

// Reader owns a parsed container's metadata snapshot and the seekable
// handle it was read from. Close releases any scratch file created for a
// non-seekable input (spec §5/E6).
type Reader struct {
	rs      io.ReadSeeker
	scratch *os.File

	Snapshot Snapshot
}

// Open parses a WAVE/RF64 container from r (spec §4.2, C10). Non-seekable
// inputs are spooled into a temporary scratch file first, since both the
// chunk walker and the iterator façade need random access (spec §5/E6).
func Open(r io.Reader) (*Reader, error) {
	rs, scratch, err := ensureSeekable(r)
	if err != nil {
		return nil, err
	}

	snap, err := parseEnvelope(rs)
	if err != nil {
		if scratch != nil {
			scratch.Close()
			os.Remove(scratch.Name())
		}

		return nil, err
	}

	return &Reader{rs: rs, scratch: scratch, Snapshot: snap}, nil
}

// Close releases the scratch file backing a non-seekable input, if any.
func (r *Reader) Close() error {
	if r.scratch == nil {
		return nil
	}

	name := r.scratch.Name()

	if err := r.scratch.Close(); err != nil {
		return fmt.Errorf("wave: closing scratch file: %w", err)
	}

	if err := os.Remove(name); err != nil {
		return fmt.Errorf("wave: removing scratch file: %w", err)
	}

	return nil
}

// ensureSeekable returns r directly if it already supports random access;
// otherwise it copies the entire stream into a fresh temp file and returns
// that instead.
func ensureSeekable(r io.Reader) (io.ReadSeeker, *os.File, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil, nil
	}

	scratch, err := os.CreateTemp("", "wavecraft-scratch-*.wav")
	if err != nil {
		return nil, nil, fmt.Errorf("wave: creating scratch file: %w", err)
	}

	var g errgroup.Group

	g.Go(func() error {
		_, copyErr := io.Copy(scratch, r)
		if copyErr != nil {
			return fmt.Errorf("wave: spooling non-seekable input: %w", copyErr)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		scratch.Close()
		os.Remove(scratch.Name())

		return nil, nil, err
	}

	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		scratch.Close()
		os.Remove(scratch.Name())

		return nil, nil, fmt.Errorf("wave: rewinding scratch file: %w", err)
	}

	return scratch, scratch, nil
}

func parseEnvelope(rs io.ReadSeeker) (Snapshot, error) {
	var hdr [12]byte

	if _, err := io.ReadFull(rs, hdr[:]); err != nil {
		return Snapshot{}, &waveerr.IncompleteFile{Offset: 0}
	}

	id := string(hdr[0:4])

	var isRF64 bool

	switch id {
	case "RIFF":
	case "RF64":
		isRF64 = true
	default:
		return Snapshot{}, &waveerr.FormatError{Message: fmt.Sprintf("unrecognized envelope flag %q", id)}
	}

	if got := string(hdr[8:12]); got != "WAVE" {
		return Snapshot{}, &waveerr.UnexpectedFlag{Expected: "WAVE", Got: got}
	}

	fileEnd, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return Snapshot{}, fmt.Errorf("wave: measuring input length: %w", err)
	}

	if _, err := rs.Seek(12, io.SeekStart); err != nil {
		return Snapshot{}, fmt.Errorf("wave: seeking past envelope header: %w", err)
	}

	return walkChunks(rs, fileEnd, isRF64)
}

func readChunkBody(w *riff.Walker, hdr riff.Header) ([]byte, error) {
	buf := make([]byte, hdr.Size)

	if _, err := io.ReadFull(w.BodyReader(), buf); err != nil {
		return nil, fmt.Errorf("wave: reading %q chunk body: %w", hdr.ID, err)
	}

	return buf, nil
}

//nolint:gocyclo,cyclop,maintidx // a flat chunk-ID switch mirrors the reference walk in spec §4.2 step 3.
func walkChunks(rs io.ReadSeeker, end int64, isRF64 bool) (Snapshot, error) {
	walker := riff.NewSeekable(rs, end)
	seen := chunkio.NewSeenSet()

	var (
		snap     Snapshot
		fmtSeen  bool
		fmtChunk chunkio.FmtChunk
		ds64     *chunkio.DS64Chunk
		dataSeen bool
	)

	for {
		hdr, err := walker.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			var incomplete *riff.ErrIncompleteFile
			if errors.As(err, &incomplete) {
				return snap, &waveerr.IncompleteFile{Offset: incomplete.Offset}
			}

			var badSize *riff.ErrBadChunkSize
			if !errors.As(err, &badSize) {
				return snap, fmt.Errorf("wave: walking chunks: %w", err)
			}

			logger.Warn().Str("chunk", badSize.ID).Msg("chunk size overruns envelope, clamping")
		}

		id := hdr.ID

		if dup, dupErr := seen.Observe(id); dup {
			if id == "fmt " || id == "ds64" {
				return snap, &waveerr.InvalidData{Message: dupErr.Error()}
			}

			logger.Warn().Str("chunk", id).Msg(dupErr.Error())

			continue
		}

		switch id {
		case "fmt ":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			fmtChunk, err = chunkio.ParseFmt(body)
			if err != nil {
				return snap, fmt.Errorf("wave: parsing fmt chunk: %w", err)
			}

			fmtSeen = true

		case "fact":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			f, ferr := chunkio.ParseFact(body)
			if ferr != nil {
				logger.Warn().Err(ferr).Msg("fact chunk of unrecognized size, treating sample count as 0")

				f = chunkio.FactChunk{}
			}

			snap.Fact = &f

		case "ds64":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			d, derr := chunkio.ParseDS64(body)
			if derr != nil {
				return snap, fmt.Errorf("wave: parsing ds64 chunk: %w", derr)
			}

			ds64 = &d
			snap.DS64 = &d

		case "data":
			if isRF64 && ds64 == nil {
				return snap, &waveerr.InvalidData{Message: "data chunk precedes required ds64 chunk in RF64 envelope"}
			}

			size := hdr.Size
			if isRF64 {
				size = ds64.DataSize
			}

			snap.DataOffset = walker.Offset()
			snap.DataSize = size
			dataSeen = true

			// The walker's own bodySize is the clamped 32-bit field, not the
			// real ds64-derived size; resync onto the true data end before
			// any trailing chunk is walked.
			if isRF64 {
				next := riff.Align2(snap.DataOffset + int64(size)) //nolint:gosec // ds64 sizes fit int64 in practice.

				if _, serr := rs.Seek(next, io.SeekStart); serr != nil {
					return snap, fmt.Errorf("wave: seeking past RF64 data chunk: %w", serr)
				}

				walker = riff.NewSeekable(rs, end)
			}

		case "LIST":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			parseListChunk(&snap, body)

		case "bext":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			b, berr := chunkio.ParseBext(body)
			if berr != nil {
				logger.Warn().Err(berr).Msg("unparsable bext chunk, ignoring")
			} else {
				snap.Bext = &b
			}

		case "smpl":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			s, serr := chunkio.ParseSmpl(body)
			if serr != nil {
				logger.Warn().Err(serr).Msg("unparsable smpl chunk, ignoring")
			} else {
				snap.Smpl = &s
			}

		case "inst":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			i, ierr := chunkio.ParseInst(body)
			if ierr != nil {
				logger.Warn().Err(ierr).Msg("unparsable inst chunk, ignoring")
			} else {
				snap.Inst = &i
			}

		case "cue ":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			c, cerr := chunkio.ParseCue(body)
			if cerr != nil {
				logger.Warn().Err(cerr).Msg("unparsable cue chunk, ignoring")
			} else {
				snap.Cue = &c
			}

		case "plst":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			p, perr := chunkio.ParsePlst(body)
			if perr != nil {
				logger.Warn().Err(perr).Msg("unparsable plst chunk, ignoring")
			} else {
				snap.Plst = &p
			}

		case "acid":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			a, aerr := chunkio.ParseAcid(body)
			if aerr != nil {
				logger.Warn().Err(aerr).Msg("unparsable acid chunk, ignoring")
			} else {
				snap.Acid = &a
			}

		case "trkn":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			t, terr := chunkio.ParseTrkn(body)
			if terr != nil {
				logger.Warn().Err(terr).Msg("unparsable trkn chunk, ignoring")
			} else {
				snap.Trkn = &t
			}

		case "axml":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			a, aerr := chunkio.ParseAxml(body)
			if aerr != nil {
				logger.Warn().Err(aerr).Msg("unparsable axml chunk, ignoring")
			} else {
				snap.Axml = &a
			}

		case "iXML":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			x, xerr := chunkio.ParseIxml(body)
			if xerr != nil {
				logger.Warn().Err(xerr).Msg("unparsable iXML chunk, ignoring")
			} else {
				snap.Ixml = &x
			}

		case "id3 ":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			r := chunkio.ParseRawID3(body)
			snap.ID3 = &r

		case "JUNK":
			body, rerr := readChunkBody(walker, hdr)
			if rerr != nil {
				return snap, rerr
			}

			snap.Junks = append(snap.Junks, chunkio.ParseJunk(body))

		default:
			logger.Warn().Str("chunk", id).Msg("unrecognized chunk, skipping")
		}
	}

	if !fmtSeen {
		return snap, &waveerr.MissingData{Name: "fmt "}
	}

	if !dataSeen {
		return snap, &waveerr.MissingData{Name: "data"}
	}

	if isRF64 && ds64 == nil {
		return snap, &waveerr.MissingData{Name: "ds64"}
	}

	spec, err := specFromFmt(fmtChunk)
	if err != nil {
		return snap, err
	}

	snap.Spec = spec

	return snap, nil
}

func parseListChunk(snap *Snapshot, body []byte) {
	if len(body) < 4 {
		logger.Warn().Msg("LIST chunk too short for a type tag, skipping")

		return
	}

	switch listType := string(body[0:4]); listType {
	case "INFO":
		info, err := chunkio.ParseListInfo(body[4:])
		if err != nil {
			logger.Warn().Err(err).Msg("unparsable LIST INFO chunk, ignoring")

			return
		}

		snap.Info = &info

	case "adtl":
		adtl, err := chunkio.ParseListAdtl(body[4:])
		if err != nil {
			logger.Warn().Err(err).Msg("unparsable LIST adtl chunk, ignoring")

			return
		}

		snap.Adtl = &adtl

	default:
		logger.Warn().Str("list-type", listType).Msg("unrecognized LIST sub-type, skipping")
	}
}

// specFromFmt builds a Spec from a parsed fmt chunk: classifies the codec,
// derives the PCM sample format from bits_per_sample per the legacy
// 8-bit-unsigned/else-signed convention, and either trusts the extensible
// channel mask or falls back to the conventional layout guesser (spec
// §4.2 step 6, §6).
func specFromFmt(f chunkio.FmtChunk) (Spec, error) {
	codec, err := classify.Classify(f.FormatTag, f.Extension, f.SubFormat)
	if err != nil {
		return Spec{}, fmt.Errorf("wave: classifying format: %w", err)
	}

	spec := Spec{
		Channels:      f.Channels,
		SampleRate:    f.SampleRate,
		BitsPerSample: f.BitsPerSample,
		Codec:         codec,
	}

	switch codec {
	case classify.PCMInt:
		if f.BitsPerSample == 8 {
			spec.SampleFormat = FormatUInt
		} else {
			spec.SampleFormat = FormatInt
		}
	case classify.PCMFloat:
		spec.SampleFormat = FormatFloat
	case classify.Unknown, classify.ALaw, classify.MULaw, classify.AdpcmMS, classify.AdpcmIMA,
		classify.AdpcmYamaha, classify.MP3, classify.Vorbis, classify.Opus, classify.FLAC:
		spec.SampleFormat = FormatUnknown
	}

	if f.Extension == classify.ExtExtensible && f.ChannelMask != 0 {
		spec.ChannelMask = f.ChannelMask
	} else {
		spec.ChannelMask = classify.DefaultChannelMask(f.Channels)
	}

	return spec, nil
}

// Source builds the SampleSource that decodes this container's data chunk
// according to its classified codec (spec §4.4/§4.10): the bridge between
// the reader's static snapshot and the iterator façade's frame pulls.
func (r *Reader) Source() (SampleSource, error) {
	spec := r.Snapshot.Spec
	region := newSectionReadSeeker(r.rs, r.Snapshot.DataOffset, int64(r.Snapshot.DataSize)) //nolint:gosec // data sizes fit int64 in practice.

	switch spec.Codec {
	case classify.PCMInt, classify.PCMFloat:
		t, err := spec.WaveSampleType()
		if err != nil {
			return nil, err
		}

		tc, err := pcmcodec.NewTranscoder(t, spec.Channels, spec.ChannelMask)
		if err != nil {
			return nil, fmt.Errorf("wave: building pcm transcoder: %w", err)
		}

		return newPCMSource(region, 0, tc), nil

	case classify.ALaw:
		return newCompanderSource(region, 0, int(spec.Channels), alawDecode()), nil

	case classify.MULaw:
		return newCompanderSource(region, 0, int(spec.Channels), mulawDecode()), nil

	case classify.AdpcmMS:
		return newADPCMSource(adpcm.MS, int(spec.Channels), region, 0), nil

	case classify.AdpcmIMA:
		return newADPCMSource(adpcm.IMA, int(spec.Channels), region, 0), nil

	case classify.AdpcmYamaha:
		return newADPCMSource(adpcm.Yamaha, int(spec.Channels), region, 0), nil

	case classify.MP3:
		dec, err := mp3.NewDecoder(region)
		if err != nil {
			return nil, fmt.Errorf("wave: opening mp3 stream: %w", err)
		}

		return newBlockCodecSource(int(spec.Channels), dec.Read), nil

	case classify.Vorbis:
		dec, err := vorbis.NewDecoder(region)
		if err != nil {
			return nil, fmt.Errorf("wave: opening vorbis stream: %w", err)
		}

		return newBlockCodecSource(dec.Channels(), dec.Read), nil

	case classify.FLAC:
		dec, err := flac.NewDecoder(region)
		if err != nil {
			return nil, fmt.Errorf("wave: opening flac stream: %w", err)
		}

		return newFLACBlockSource(dec.Channels(), dec.NativeType(), dec.Read), nil

	case classify.Opus:
		dec, err := opus.NewDecoder(int(spec.SampleRate), int(spec.Channels), opusPacketSource(region))
		if err != nil {
			return nil, fmt.Errorf("wave: opening opus stream: %w", err)
		}

		return newBlockCodecSource(int(spec.Channels), dec.Read), nil

	default:
		return nil, &waveerr.Unimplemented{Codec: spec.Codec.String(), Detail: "no decode adapter"}
	}
}

// opusPacketSource reads back the length-prefixed packet framing
// opus.Encoder.flush writes, the data chunk's only source of Opus packet
// boundaries.
func opusPacketSource(r io.Reader) opus.PacketSource {
	return func() ([]byte, error) {
		var lenBuf [2]byte

		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, io.EOF
			}

			return nil, fmt.Errorf("wave: reading opus packet length: %w", err)
		}

		packet := make([]byte, binary.LittleEndian.Uint16(lenBuf[:]))

		if _, err := io.ReadFull(r, packet); err != nil {
			return nil, fmt.Errorf("wave: reading opus packet: %w", err)
		}

		return packet, nil
	}
}
