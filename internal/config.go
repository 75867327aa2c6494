package internal

import "fmt"

// CharacterRune validates that a replacement-character setting holds exactly
// one rune, as multi-character replacements would break length-preserving
// masking.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
