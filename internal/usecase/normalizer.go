package usecase

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxNormalizePasses bounds the fold loop; real input settles in one or two.
const maxNormalizePasses = 4

// Normalize canonicalizes a food or ingredient name for comparison:
// composed to Unicode NFC, lower-cased, runs of whitespace collapsed to one
// space and trimmed. Composition can yield an upper-case letter and
// lower-casing can yield a composable sequence, so the fold repeats until
// the text stops changing.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	current := text
	for i := 0; i < maxNormalizePasses; i++ {
		next := foldOnce(current)
		if next == current {
			break
		}
		current = next
	}
	return current
}

func foldOnce(text string) string {
	lowered := strings.ToLower(norm.NFC.String(text))
	return strings.Join(strings.Fields(norm.NFC.String(lowered)), " ")
}
