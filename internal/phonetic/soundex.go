// Package phonetic implements Soundex matching for the Name Search
// component. No ecosystem Go library for phonetic matching appears
// anywhere in the retrieved example corpus, so this follows the one
// hand-rolled implementation the corpus does contain.
package phonetic

import "strings"

var soundexCode = map[byte]byte{
	'B': '1', 'F': '1', 'P': '1', 'V': '1',
	'C': '2', 'G': '2', 'J': '2', 'K': '2', 'Q': '2', 'S': '2', 'X': '2', 'Z': '2',
	'D': '3', 'T': '3',
	'L': '4',
	'M': '5', 'N': '5',
	'R': '6',
}

// Encode returns the 4-character Soundex code for text, or "" for an empty
// or all-non-letter input.
func Encode(text string) string {
	upper := strings.ToUpper(strings.TrimSpace(text))
	if upper == "" {
		return ""
	}

	var result strings.Builder
	var prevCode byte
	started := false

	for i := 0; i < len(upper); i++ {
		ch := upper[i]
		if ch < 'A' || ch > 'Z' {
			continue
		}
		code := soundexCode[ch]
		if !started {
			result.WriteByte(ch)
			prevCode = code
			started = true
			continue
		}
		if code != 0 && code != prevCode && result.Len() < 4 {
			result.WriteByte(code)
		}
		prevCode = code
	}

	if !started {
		return ""
	}
	for result.Len() < 4 {
		result.WriteByte('0')
	}
	return result.String()
}

// Equal reports whether a and b share the same full Soundex code.
func Equal(a, b string) bool {
	ca, cb := Encode(a), Encode(b)
	return ca != "" && ca == cb
}

// PrefixMatch reports whether a and b share the same first-two-character
// Soundex prefix (letter + first digit), used as a weaker phonetic hit.
func PrefixMatch(a, b string) bool {
	ca, cb := Encode(a), Encode(b)
	if len(ca) < 2 || len(cb) < 2 {
		return false
	}
	return ca[:2] == cb[:2]
}
