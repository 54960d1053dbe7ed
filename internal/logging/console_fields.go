package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

type infoField struct {
	label string
	value string
}

// infoHighlightKeys are shown first, in this order, at info level.
var infoHighlightKeys = []string{
	FieldAlert,
	FieldEventType,
	"source",
	"output_path",
	"duration_seconds",
	"chunk_count",
	"segment_count",
	"failed_chunks",
	"failed_segments",
	"backend",
	"model",
	"error_message",
	FieldErrorHint,
	FieldImpact,
	"stage_duration",
}

// Subject keys already appear in the header line.
var infoSkipKeys = map[string]struct{}{
	FieldRunID:         {},
	FieldStage:         {},
	FieldChunkIndex:    {},
	FieldCorrelationID: {},
}

var infoLabels = map[string]string{
	FieldEventType:     "Event",
	FieldErrorHint:     "Hint",
	"duration_seconds": "Duration",
	"output_path":      "Output",
	"error":            "Error",
}

// selectInfoFields orders highlighted keys first, then the remaining
// attributes in record order.
func selectInfoFields(attrs []kv) []infoField {
	if len(attrs) == 0 {
		return nil
	}
	used := make([]bool, len(attrs))
	result := make([]infoField, 0, len(attrs))
	for _, key := range infoHighlightKeys {
		for idx, attr := range attrs {
			if used[idx] || attr.key != key {
				continue
			}
			used[idx] = true
			result = append(result, infoField{label: displayLabel(attr.key), value: formatValue(attr.value)})
			break
		}
	}
	for idx, attr := range attrs {
		if used[idx] {
			continue
		}
		if _, skip := infoSkipKeys[attr.key]; skip {
			continue
		}
		result = append(result, infoField{label: displayLabel(attr.key), value: formatValue(attr.value)})
	}
	return result
}

func displayLabel(key string) string {
	if label, ok := infoLabels[key]; ok {
		return label
	}
	words := strings.Split(strings.ReplaceAll(key, ".", "_"), "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		if i == 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return formatValue(v)
	}
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	var s string
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(logTimestampLayout)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r < ' ' || r == '"' {
			return true
		}
	}
	return false
}
