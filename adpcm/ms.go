package adpcm

// MSState is one channel's running predictor for MS ADPCM.
type MSState struct {
	Sample1, Sample2 int16
	Coeff1, Coeff2   int16
	Delta            int16
}

func msPredict(state MSState) int32 {
	return (int32(state.Sample1)*int32(state.Coeff1) + int32(state.Sample2)*int32(state.Coeff2)) / 256
}

func msEncodeNibble(state *MSState, s int16) uint8 {
	predictor := msPredict(*state)
	errVal := int32(s) - predictor

	delta := int32(state.Delta)
	bias := delta / 2
	if errVal < 0 {
		bias = -bias
	}

	nibble := clampInt(int((errVal+bias)/delta), -8, 7) & 0x0F

	signed := int32(nibble)
	if signed > 7 {
		signed -= 16
	}

	reconstructed := clampInt16(int(predictor + signed*delta))

	newDelta := (int32(msAdaptationTable[nibble]) * delta) >> 8
	if newDelta < 16 {
		newDelta = 16
	}

	state.Delta = int16(newDelta) //nolint:gosec // clamped above, fits int16 for realistic deltas.
	state.Sample2 = state.Sample1
	state.Sample1 = reconstructed

	return uint8(nibble) //nolint:gosec // masked to 4 bits above.
}

func msDecodeNibble(state *MSState, nibble uint8) int16 {
	predictor := msPredict(*state)

	signed := int32(nibble)
	if signed > 7 {
		signed -= 16
	}

	delta := int32(state.Delta)
	reconstructed := clampInt16(int(predictor + signed*delta))

	newDelta := (int32(msAdaptationTable[nibble]) * delta) >> 8
	if newDelta < 16 {
		newDelta = 16
	}

	state.Delta = int16(newDelta) //nolint:gosec // clamped above.
	state.Sample2 = state.Sample1
	state.Sample1 = reconstructed

	return reconstructed
}

// newMSState seeds a channel's predictor from its default coefficient
// table entry (index 0, the flat (256,0) predictor) and an initial delta.
func newMSState(initialDelta int16) MSState {
	c := msDefaultCoeffTable[0]

	return MSState{Coeff1: c.c1, Coeff2: c.c2, Delta: initialDelta}
}

// EncodeMSBlock encodes one block's worth of samples into a freshly
// allocated block buffer. next is called frame-major (spec §4.6: "stereo
// interleaves every byte as (L nibble) | (R nibble << 4)").
func EncodeMSBlock(channels int, predictorIndex uint8, initialDelta int16, next NextSample) []byte {
	block := make([]byte, MS.BlockSize(channels))

	states := make([]MSState, channels)
	coeff := msDefaultCoeffTable[clampInt(int(predictorIndex), 0, len(msDefaultCoeffTable)-1)]

	for ch := range states {
		states[ch] = MSState{Coeff1: coeff.c1, Coeff2: coeff.c2, Delta: initialDelta}
	}

	// Header: predictor_index, delta, sample1 (= sample N-1), sample2 (= sample N-2), per channel.
	s1 := make([]int16, channels)
	s2 := make([]int16, channels)

	for ch := 0; ch < channels; ch++ {
		v, _ := next()
		s2[ch] = v
	}

	for ch := 0; ch < channels; ch++ {
		v, _ := next()
		s1[ch] = v
	}

	for ch := 0; ch < channels; ch++ {
		states[ch].Sample1 = s1[ch]
		states[ch].Sample2 = s2[ch]

		off := ch * msHeaderSize
		block[off] = predictorIndex
		block[off+1] = byte(uint16(initialDelta))
		block[off+2] = byte(uint16(initialDelta) >> 8)
		block[off+3] = byte(uint16(s1[ch]))
		block[off+4] = byte(uint16(s1[ch]) >> 8)
		block[off+5] = byte(uint16(s2[ch]))
		block[off+6] = byte(uint16(s2[ch]) >> 8)
	}

	headerTotal := msHeaderSize * channels
	dataOff := headerTotal

	if channels == 2 {
		for dataOff < len(block) {
			l := encodeMSSampleOrSilence(&states[0], next)
			r := encodeMSSampleOrSilence(&states[1], next)
			block[dataOff] = l | (r << 4)
			dataOff++
		}

		return block
	}

	for dataOff < len(block) {
		hi := encodeMSSampleOrSilence(&states[0], next)
		lo := encodeMSSampleOrSilence(&states[0], next)
		block[dataOff] = (hi << 4) | lo
		dataOff++
	}

	return block
}

func encodeMSSampleOrSilence(state *MSState, next NextSample) uint8 {
	s, ok := next()
	if !ok {
		s = 0
	}

	return msEncodeNibble(state, s)
}

// DecodeMSBlock decodes one MS ADPCM block, emitting frame-major samples.
func DecodeMSBlock(channels int, block []byte, emit EmitSample) error {
	size := MS.BlockSize(channels)
	if len(block) < size {
		return &ErrShortBlock{Have: len(block), Want: size}
	}

	states := make([]MSState, channels)

	for ch := 0; ch < channels; ch++ {
		off := ch * msHeaderSize

		predictorIndex := block[off]
		if int(predictorIndex) >= len(msDefaultCoeffTable) {
			return &ErrBadPredictorIndex{Index: predictorIndex}
		}

		coeff := msDefaultCoeffTable[predictorIndex]
		delta := int16(uint16(block[off+1]) | uint16(block[off+2])<<8)     //nolint:gosec // wire format.
		sample1 := int16(uint16(block[off+3]) | uint16(block[off+4])<<8)   //nolint:gosec // wire format.
		sample2 := int16(uint16(block[off+5]) | uint16(block[off+6])<<8)   //nolint:gosec // wire format.

		states[ch] = MSState{Coeff1: coeff.c1, Coeff2: coeff.c2, Delta: delta, Sample1: sample1, Sample2: sample2}
	}

	// The header's sample2/sample1 are themselves the first two decoded
	// frames, oldest first.
	for ch := 0; ch < channels; ch++ {
		emit(states[ch].Sample2)
	}

	for ch := 0; ch < channels; ch++ {
		emit(states[ch].Sample1)
	}

	headerTotal := msHeaderSize * channels
	dataOff := headerTotal

	if channels == 2 {
		for dataOff < len(block) {
			b := block[dataOff]
			emit(msDecodeNibble(&states[0], b&0x0F))
			emit(msDecodeNibble(&states[1], b>>4))
			dataOff++
		}

		return nil
	}

	for dataOff < len(block) {
		b := block[dataOff]
		emit(msDecodeNibble(&states[0], b>>4))
		emit(msDecodeNibble(&states[0], b&0x0F))
		dataOff++
	}

	return nil
}
