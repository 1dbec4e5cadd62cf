package adpcm

// YamahaState is one channel's running predictor for YAMAHA ADPCM.
type YamahaState struct {
	Predictor int32
	Step      int32
}

// NewYamahaState returns a freshly initialized channel state (step 127,
// predictor 0, spec §4.6).
func NewYamahaState() YamahaState {
	return YamahaState{Step: yamahaStepInit}
}

func yamahaEncodeNibble(state *YamahaState, s int16) uint8 {
	delta := int32(s) - state.Predictor

	magnitude := delta
	sign := uint8(0)

	if magnitude < 0 {
		magnitude = -magnitude
		sign = 8
	}

	nibble := magnitude * 4 / state.Step
	if nibble > 7 {
		nibble = 7
	}

	code := sign | uint8(nibble) //nolint:gosec // nibble clamped to 0..7 above.

	state.Predictor = clampInt32(state.Predictor+state.Step*int32(yamahaDiffLookup[code])/8, -32768, 32767)
	state.Step = clampInt32(int32(yamahaIndexScale[code])*state.Step>>8, yamahaStepMin, yamahaStepMax)

	return code
}

func yamahaDecodeNibble(state *YamahaState, code uint8) int16 {
	state.Predictor = clampInt32(state.Predictor+state.Step*int32(yamahaDiffLookup[code&0x0F])/8, -32768, 32767)
	state.Step = clampInt32(int32(yamahaIndexScale[code&0x0F])*state.Step>>8, yamahaStepMin, yamahaStepMax)

	return int16(state.Predictor)
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

// EncodeYamahaBlock encodes one block's worth of samples. Mono packs two
// consecutive samples per byte; stereo packs one L sample in the low
// nibble and one R sample in the high nibble of each byte (spec §4.6).
func EncodeYamahaBlock(channels int, states []YamahaState, next NextSample) []byte {
	block := make([]byte, yamahaBlockSize)

	if channels == 2 {
		for i := range block {
			l := encodeYamahaSampleOrSilence(&states[0], next)
			r := encodeYamahaSampleOrSilence(&states[1], next)
			block[i] = l | (r << 4)
		}

		return block
	}

	for i := range block {
		hi := encodeYamahaSampleOrSilence(&states[0], next)
		lo := encodeYamahaSampleOrSilence(&states[0], next)
		block[i] = hi | (lo << 4)
	}

	return block
}

func encodeYamahaSampleOrSilence(state *YamahaState, next NextSample) uint8 {
	s, ok := next()
	if !ok {
		s = 0
	}

	return yamahaEncodeNibble(state, s)
}

// DecodeYamahaBlock decodes one YAMAHA ADPCM block, emitting frame-major
// samples.
func DecodeYamahaBlock(channels int, states []YamahaState, block []byte, emit EmitSample) error {
	if len(block) < yamahaBlockSize {
		return &ErrShortBlock{Have: len(block), Want: yamahaBlockSize}
	}

	if channels == 2 {
		for _, b := range block {
			emit(yamahaDecodeNibble(&states[0], b&0x0F))
			emit(yamahaDecodeNibble(&states[1], b>>4))
		}

		return nil
	}

	for _, b := range block {
		emit(yamahaDecodeNibble(&states[0], b&0x0F))
		emit(yamahaDecodeNibble(&states[0], b>>4))
	}

	return nil
}
