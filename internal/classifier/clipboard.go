package classifier

import (
	"regexp"
	"strings"
)

// Precompiled, anchored patterns for clipboard content classification
// (spec §4.4). Anchoring and bounded quantifiers keep these linear-time
// to match spec §4.2's pathological-input safety requirement, which
// applies equally here since clipboard content is also untrusted input.
var (
	urlPattern   = regexp.MustCompile(`(?i)^https?://`)
	emailPattern = regexp.MustCompile(`(?i)^[a-z0-9._%+\-]{1,64}@[a-z0-9.\-]{1,255}\.[a-z]{2,24}$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-+()]{7,20}$`)
)

// codeKeywords is the closed set of tokens that mark clipboard text as
// code (spec §4.4).
var codeKeywords = []string{
	"func ", "def ", "class ", "import ", "package ", "const ", "public static",
	"=>", "SELECT ", "#include", "fn ", "let ", "var ",
}

const longCopyThreshold = 500

// classifyClipboardText returns the trigger name for a piece of
// clipboard text, in the fixed priority order spec §4.4 implies: URL,
// code, email, phone, long, otherwise generic.
func classifyClipboardText(text string) string {
	switch {
	case urlPattern.MatchString(text):
		return "url_copied"
	case containsAny(text, codeKeywords):
		return "code_copied"
	case emailPattern.MatchString(text):
		return "email_copied"
	case phonePattern.MatchString(text):
		return "phone_copied"
	case len(text) >= longCopyThreshold:
		return "long_copy"
	default:
		return "generic_copy"
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
