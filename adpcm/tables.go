package adpcm

// imaIndexTable maps an IMA nibble to the step-table index delta.
var imaIndexTable = [16]int8{-1, -1, -1, -1, 2, 4, 6, 8, -1, -1, -1, -1, 2, 4, 6, 8}

// imaStepTable is the standard 89-entry IMA ADPCM step size table.
var imaStepTable = [89]uint16{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17,
	19, 21, 23, 25, 28, 31, 34, 37, 41, 45,
	50, 55, 60, 66, 73, 80, 88, 97, 107, 118,
	130, 143, 157, 173, 190, 209, 230, 253, 279, 307,
	337, 371, 408, 449, 494, 544, 598, 658, 724, 796,
	876, 963, 1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066,
	2272, 2499, 2749, 3024, 3327, 3660, 4026, 4428, 4871, 5358,
	5894, 6484, 7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794, 32767,
}

const (
	imaBlockSize      = 512
	imaHeaderSize     = 4
	imaInterleaveBytes = 4
)

// msAdaptationTable drives the MS ADPCM delta update per nibble.
var msAdaptationTable = [16]int16{
	230, 230, 230, 230, 307, 409, 512, 614,
	768, 614, 512, 409, 307, 230, 230, 230,
}

// msCoeffSet is one (coeff1, coeff2) predictor pair from the MS ADPCM
// default coefficient table.
type msCoeffSet struct {
	c1, c2 int16
}

// msDefaultCoeffTable is the 7-entry default coefficient table every MS
// ADPCM block's predictor_index selects from (unless the fmt extension
// carries a custom table, which this implementation does not emit).
var msDefaultCoeffTable = [7]msCoeffSet{
	{256, 0},
	{512, -256},
	{0, 0},
	{192, 64},
	{240, 0},
	{460, -208},
	{392, -232},
}

const (
	msBlockSize  = 1024
	msHeaderSize = 7
)

// yamahaIndexScale mirrors msAdaptationTable's role for the YAMAHA variant.
var yamahaIndexScale = [16]int16{
	230, 230, 230, 230, 307, 409, 512, 614,
	230, 230, 230, 230, 307, 409, 512, 614,
}

// yamahaDiffLookup maps a YAMAHA nibble to its signed delta multiplier.
var yamahaDiffLookup = [16]int8{1, 3, 5, 7, 9, 11, 13, 15, -1, -3, -5, -7, -9, -11, -13, -15}

const (
	yamahaBlockSize  = 1024
	yamahaStepInit   = 127
	yamahaStepMin    = 127
	yamahaStepMax    = 24576
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

func clampInt16(v int) int16 {
	if v < -32768 {
		return -32768
	}

	if v > 32767 {
		return 32767
	}

	return int16(v)
}
