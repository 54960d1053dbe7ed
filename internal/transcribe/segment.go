package transcribe

import (
	"math"

	"bilingual/internal/chunker"
)

// Segment is one utterance with chunk-relative timing in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Valid reports whether 0 <= Start < End with finite bounds.
func (s Segment) Valid() bool {
	if math.IsNaN(s.Start) || math.IsNaN(s.End) || math.IsInf(s.Start, 0) || math.IsInf(s.End, 0) {
		return false
	}
	return s.Start >= 0 && s.Start < s.End
}

// AbsoluteSegment is a Segment placed on the source timeline.
type AbsoluteSegment struct {
	Segment
	ChunkIndex int `json:"chunk_index"`
}

// Rebase shifts seg by the chunk's offset. Text is kept untouched.
func Rebase(chunk chunker.Chunk, seg Segment) AbsoluteSegment {
	return AbsoluteSegment{
		Segment: Segment{
			Start: seg.Start + chunk.Offset,
			End:   seg.End + chunk.Offset,
			Text:  seg.Text,
		},
		ChunkIndex: chunk.Index,
	}
}
