package parser

import (
	"regexp"
	"strings"
)

// modePattern recognises an explicit mode-setting command (spec §4.2.1).
// Anchored only by the keyword set, not position, since these commands
// arrive as free conversational text ("switch to incarnation mode").
var modePattern = regexp.MustCompile(`(?i)\b(pet|incarnation|both)\s+mode\b|모드를?\s*(펫|인카네이션|둘\s*다)`)

// presetTable is the closed palette of named preset characters (spec
// §4.2.1: "a fixed palette table (≥10 named presets)"), recognised in
// an explicit "become <preset>" / "<preset>(으)로 설정" framing.
var presetTable = []string{
	"cat", "dog", "fox", "dragon", "robot", "ghost", "rabbit", "owl", "panda", "penguin", "wolf", "phoenix",
	"고양이", "강아지", "여우", "드래곤", "로봇", "유령", "토끼", "올빼미", "판다", "펭귄", "늑대", "불사조",
}

// \w excludes Hangul, so the Korean branch uses [\p{L}\p{N}]+ (as
// character.go does) rather than \w — otherwise none of presetTable's
// Korean entries could ever match.
var presetPattern = regexp.MustCompile(`(?i)\b(become|set\s+character\s+to)\s+a?\s*(\w+)\b|([\p{L}\p{N}]+)(?:으로|로)\s*설정(?:해줘|해)?`)

// parseSetting recognises mode switches and named preset-character
// selections. Returns ok=false if input matches neither.
func parseSetting(input string) (Result, bool) {
	lower := strings.ToLower(input)

	if m := modePattern.FindStringSubmatch(input); m != nil {
		mode := normalizeMode(m[1], m[2])
		if mode != "" {
			return Result{Type: TypeSetting, Mode: mode}, true
		}
	}

	if m := presetPattern.FindStringSubmatch(lower); m != nil {
		candidate := firstNonEmpty(m[2], m[3])
		for _, p := range presetTable {
			if strings.EqualFold(candidate, p) {
				return Result{Type: TypeSetting, Preset: p}, true
			}
		}
	}

	return Result{}, false
}

func normalizeMode(en, ko string) string {
	switch strings.ToLower(en) {
	case "pet":
		return "pet"
	case "incarnation":
		return "incarnation"
	case "both":
		return "both"
	}
	switch ko {
	case "펫":
		return "pet"
	case "인카네이션":
		return "incarnation"
	case "둘 다", "둘다":
		return "both"
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
