package wave

import "github.com/farcloser/wavecraft/chunkio"

// Snapshot is the read-only metadata gathered while parsing a container:
// every optional chunk that was present, first-wins for any duplicate
// singleton (spec §4.2/§6/E5).
type Snapshot struct {
	Spec Spec

	Fact  *chunkio.FactChunk
	DS64  *chunkio.DS64Chunk
	Bext  *chunkio.BextChunk
	Smpl  *chunkio.SmplChunk
	Inst  *chunkio.InstChunk
	Cue   *chunkio.CueChunk
	Plst  *chunkio.PlstChunk
	Acid  *chunkio.AcidChunk
	Trkn  *chunkio.TrknChunk
	Info  *chunkio.ListInfo
	Adtl  *chunkio.ListAdtl
	Axml  *chunkio.AxmlChunk
	Ixml  *chunkio.IxmlChunk
	ID3   *chunkio.RawID3
	Junks []chunkio.JunkChunk

	// DataOffset is the absolute byte offset of the data chunk's first
	// sample byte; DataSize is its declared length in bytes.
	DataOffset int64
	DataSize   uint64
}
