package parser

import "strings"

// Parse maps free-text input to a single tagged Result, trying each
// intent family in a fixed priority order and returning the first
// match. Anything matching none of them falls back to TypeSpeak,
// carrying the trimmed input verbatim so the caller can still forward
// it as companion speech. Parse performs no I/O: resolver supplies the
// only external input it consults (spec §4.2, invariant 7: setting
// wins over character_change on ambiguous input, guaranteed here by
// trying parseSetting first).
func Parse(input string, resolver PathResolver) Result {
	if r, ok := parseSetting(input); ok {
		return r
	}
	if r, ok := parseCharacterChange(input); ok {
		return r
	}
	if r, ok := parseSmartFileOp(input, resolver); ok {
		return r
	}
	if r, ok := parseAction(input); ok {
		return r
	}
	return Result{Type: TypeSpeak, Text: strings.TrimSpace(input)}
}
