package parser

import (
	"regexp"
	"strings"
)

// characterPatterns is the closed set of AI-generated character-change
// phrasings (spec §4.2.2: "four Korean patterns + three English
// patterns capturing the concept noun phrase"). Each has exactly one
// capture group: the concept. Bounded, non-nested quantifiers keep
// these linear-time over arbitrary input.
var characterPatterns = []*regexp.Regexp{
	// Korean
	regexp.MustCompile(`([\p{L}\p{N} ]{1,40})(?:으로|로)\s*변신시켜`),
	regexp.MustCompile(`([\p{L}\p{N} ]{1,40})(?:이|가)\s*되어줘`),
	regexp.MustCompile(`([\p{L}\p{N} ]{1,40})처럼\s*변해줘`),
	regexp.MustCompile(`([\p{L}\p{N} ]{1,40})\s*캐릭터로\s*바꿔줘`),
	// English
	regexp.MustCompile(`(?i)turn\s+into\s+(?:an?\s+)?([a-z0-9 ]{1,40})`),
	regexp.MustCompile(`(?i)transform\s+into\s+(?:an?\s+)?([a-z0-9 ]{1,40})`),
	regexp.MustCompile(`(?i)change\s+into\s+(?:an?\s+)?([a-z0-9 ]{1,40})`),
}

// parseCharacterChange recognises a free-text character-change request
// and extracts its concept noun phrase.
func parseCharacterChange(input string) (Result, bool) {
	for _, re := range characterPatterns {
		if m := re.FindStringSubmatch(input); m != nil {
			concept := strings.TrimSpace(m[1])
			if concept != "" {
				return Result{Type: TypeCharacterChange, Concept: concept}, true
			}
		}
	}
	return Result{}, false
}
