package pipeline

import (
	"bilingual/internal/chunker"
	"bilingual/internal/transcribe"
	"bilingual/internal/translate"
)

func chunkGaps(chunks []chunker.Chunk, failures []transcribe.ChunkFailure) []ChunkGap {
	if len(failures) == 0 {
		return nil
	}
	lengths := make(map[int]float64, len(chunks))
	for _, chunk := range chunks {
		lengths[chunk.Index] = chunk.Length
	}
	gaps := make([]ChunkGap, 0, len(failures))
	for _, failure := range failures {
		gaps = append(gaps, ChunkGap{
			Index: failure.Index,
			Start: failure.Offset,
			End:   failure.Offset + lengths[failure.Index],
			Error: failure.Err.Error(),
		})
	}
	return gaps
}

func segmentGaps(segments []transcribe.AbsoluteSegment, failures []translate.SegmentFailure) []SegmentGap {
	if len(failures) == 0 {
		return nil
	}
	gaps := make([]SegmentGap, 0, len(failures))
	for _, failure := range failures {
		gap := SegmentGap{Index: failure.Index, Error: failure.Err.Error(), Canceled: failure.Canceled()}
		if failure.Index >= 0 && failure.Index < len(segments) {
			gap.Start = segments[failure.Index].Start
			gap.End = segments[failure.Index].End
		}
		gaps = append(gaps, gap)
	}
	return gaps
}

func untranslatedGaps(segments []transcribe.AbsoluteSegment, cause error) []SegmentGap {
	if len(segments) == 0 {
		return nil
	}
	message := "translation did not run"
	if cause != nil {
		message = cause.Error()
	}
	gaps := make([]SegmentGap, len(segments))
	for i, seg := range segments {
		gaps[i] = SegmentGap{Index: i, Start: seg.Start, End: seg.End, Error: message, Canceled: true}
	}
	return gaps
}
