package transcript

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"bilingual/internal/fileutil"
	"bilingual/internal/language"
	"bilingual/internal/transcribe"
)

// TranslatedSegment pairs a source segment with its translation. An empty
// Translated means the translation failed or never ran.
type TranslatedSegment struct {
	transcribe.AbsoluteSegment
	Translated string `json:"translated"`
}

// AlignmentError means source and translated sequences no longer line up.
// Nothing is written when it is returned.
type AlignmentError struct {
	Index  int
	Reason string
}

func (e *AlignmentError) Error() string {
	if e.Index < 0 {
		return "alignment: " + e.Reason
	}
	return fmt.Sprintf("alignment: block %d: %s", e.Index, e.Reason)
}

// Labels prefixes the source and target lines of each block.
type Labels struct {
	Source string
	Target string
}

// DefaultLabels names both languages in the target language, so ja→ko
// yields 일본어 and 한국어.
func DefaultLabels(source, target string) Labels {
	return Labels{
		Source: language.Label(source, target),
		Target: language.Label(target, target),
	}
}

// Pair zips segments with translations index for index.
func Pair(segments []transcribe.AbsoluteSegment, translated []string) ([]TranslatedSegment, error) {
	if len(segments) != len(translated) {
		return nil, &AlignmentError{
			Index:  -1,
			Reason: fmt.Sprintf("%d transcribed segments but %d translations", len(segments), len(translated)),
		}
	}
	out := make([]TranslatedSegment, len(segments))
	for i, seg := range segments {
		out[i] = TranslatedSegment{AbsoluteSegment: seg, Translated: translated[i]}
	}
	return out, nil
}

// Validate checks that blocks are in (chunk, start) order: chunk indexes
// never decrease and a later chunk never starts before an earlier one.
func Validate(segments []TranslatedSegment) error {
	for i := 1; i < len(segments); i++ {
		prev, cur := segments[i-1], segments[i]
		switch {
		case cur.ChunkIndex < prev.ChunkIndex:
			return &AlignmentError{Index: i, Reason: fmt.Sprintf("chunk %d follows chunk %d", cur.ChunkIndex, prev.ChunkIndex)}
		case cur.ChunkIndex > prev.ChunkIndex && cur.Start < prev.Start:
			return &AlignmentError{Index: i, Reason: fmt.Sprintf("chunk %d starts at %.2f before chunk %d at %.2f", cur.ChunkIndex, cur.Start, prev.ChunkIndex, prev.Start)}
		}
	}
	return nil
}

// Write renders every block and writes them in one call. Order is checked
// before anything reaches w.
func Write(w io.Writer, segments []TranslatedSegment, labels Labels) error {
	if err := Validate(segments); err != nil {
		return err
	}
	var buf bytes.Buffer
	for _, seg := range segments {
		fmt.Fprintf(&buf, "[%.2f - %.2f]\n%s: %s\n%s: %s\n\n",
			seg.Start, seg.End,
			labels.Source, singleLine(seg.Text),
			labels.Target, singleLine(seg.Translated),
		)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile writes the transcript atomically; a failure leaves any previous
// file at path untouched.
func WriteFile(path string, segments []TranslatedSegment, labels Labels) error {
	if err := Validate(segments); err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return Write(w, segments, labels)
	})
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func singleLine(text string) string {
	return strings.TrimSpace(lineBreaks.Replace(text))
}
