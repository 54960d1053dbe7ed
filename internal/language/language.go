package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// common lists the languages recognized by their English word form
// (e.g. "japanese") in addition to their codes.
var common = []language.Tag{
	language.Japanese,
	language.Korean,
	language.English,
	language.Chinese,
	language.Spanish,
	language.French,
	language.German,
	language.Italian,
	language.Portuguese,
	language.Russian,
	language.Vietnamese,
	language.Thai,
	language.Indonesian,
	language.Arabic,
	language.Hindi,
}

var byWord map[string]string

func init() {
	byWord = make(map[string]string, len(common))
	namer := display.English.Tags()
	for _, tag := range common {
		base, _ := tag.Base()
		byWord[strings.ToLower(namer.Name(tag))] = base.String()
	}
}

// Normalize converts a language code or English word form to its ISO 639-1
// code (or ISO 639-2 when no 2-letter code exists). Unknown or empty input
// is an error.
func Normalize(code string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" {
		return "", fmt.Errorf("language code is empty")
	}
	if mapped, ok := byWord[trimmed]; ok {
		return mapped, nil
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("unrecognized language %q: %w", code, err)
	}
	if tag == language.Und {
		return "", fmt.Errorf("unrecognized language %q", code)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", fmt.Errorf("unrecognized language %q", code)
	}
	return base.String(), nil
}

// ToISO2 converts any recognized language code or word to its canonical
// short code. Returns empty string for unrecognized input.
func ToISO2(code string) string {
	normalized, err := Normalize(code)
	if err != nil {
		return ""
	}
	return normalized
}

// DisplayName returns the English name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	normalized, err := Normalize(code)
	if err != nil {
		return strings.ToUpper(strings.TrimSpace(code))
	}
	if name := display.English.Tags().Name(language.Make(normalized)); name != "" {
		return name
	}
	return strings.ToUpper(normalized)
}

// Label returns the name of code written in the language in, so a Japanese
// source read by a Korean audience is labelled "일본어". Falls back to the
// English display name when no localized name exists.
func Label(code, in string) string {
	normalized, err := Normalize(code)
	if err != nil {
		return DisplayName(code)
	}
	reader, err := Normalize(in)
	if err != nil {
		return DisplayName(normalized)
	}
	namer := display.Tags(language.Make(reader))
	if namer == nil {
		return DisplayName(normalized)
	}
	if name := namer.Name(language.Make(normalized)); name != "" {
		return name
	}
	return DisplayName(normalized)
}
