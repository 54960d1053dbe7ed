package language

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ja", "ja"},
		{"JA", "ja"},
		{" ko ", "ko"},
		{"jpn", "ja"},
		{"kor", "ko"},
		{"eng", "en"},
		{"japanese", "ja"},
		{"Korean", "ko"},
		{"ENGLISH", "en"},
		{"zh-TW", "zh"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", " ", "und", "not a language", "xyzzy"} {
		if got, err := Normalize(input); err == nil {
			t.Errorf("Normalize(%q) = %q, want error", input, got)
		}
	}
}

func TestToISO2(t *testing.T) {
	if got := ToISO2("jpn"); got != "ja" {
		t.Fatalf("ToISO2(jpn) = %q, want ja", got)
	}
	if got := ToISO2("not a language"); got != "" {
		t.Fatalf("ToISO2 unknown = %q, want empty", got)
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"ja":  "Japanese",
		"kor": "Korean",
		"":    "Unknown",
	}
	for input, want := range tests {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestLabelLocalizesToReader(t *testing.T) {
	if got := Label("ja", "ko"); got != "일본어" {
		t.Fatalf("Label(ja, ko) = %q, want 일본어", got)
	}
	if got := Label("ko", "ko"); got != "한국어" {
		t.Fatalf("Label(ko, ko) = %q, want 한국어", got)
	}
	if got := Label("ja", "en"); got != "Japanese" {
		t.Fatalf("Label(ja, en) = %q, want Japanese", got)
	}
}

func TestLabelFallsBackForUnknownReader(t *testing.T) {
	if got := Label("ja", "not a language"); got != "Japanese" {
		t.Fatalf("Label fallback = %q, want Japanese", got)
	}
}
