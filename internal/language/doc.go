// Package language normalizes language codes and renders localized
// language names.
//
// Codes are parsed with golang.org/x/text/language so ISO 639-1, ISO 639-2,
// and BCP 47 forms all resolve to the same short code. Transcript labels are
// produced with golang.org/x/text/language/display in the reader's language.
package language
