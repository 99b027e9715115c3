package parser

import "strings"

// actionKeywords maps the closed bilingual keyword set (spec §4.2.4) to
// one of the eight recognised companion actions. Matching is a simple
// substring scan over the lower-cased input; the first table entry
// (in slice order) that appears wins, so more specific phrases are
// listed before their more general synonyms.
var actionKeywords = []struct {
	keyword string
	action  string
}{
	{"점프해", "jumping"},
	{"뛰어올라", "jumping"},
	{"jump", "jumping"},

	{"자러 가", "sleeping"},
	{"잠들어", "sleeping"},
	{"sleep", "sleeping"},
	{"nap", "sleeping"},

	{"신나게", "excited"},
	{"흥분해", "excited"},
	{"excited", "excited"},
	{"hyped", "excited"},

	{"걸어", "walking"},
	{"산책", "walking"},
	{"walk", "walking"},

	{"기어올라가", "climbing_up"},
	{"올라가", "climbing_up"},
	{"climb up", "climbing_up"},
	{"climb", "climbing_up"},

	{"놀아줘", "playing"},
	{"놀자", "playing"},
	{"play", "playing"},

	{"무서워해", "scared"},
	{"겁먹어", "scared"},
	{"scared", "scared"},
	{"afraid", "scared"},

	{"줄타고 내려가", "rappelling"},
	{"하강해", "rappelling"},
	{"rappel", "rappelling"},
}

// parseAction recognises a direct request for the companion to perform
// one of the eight closed-set physical actions.
func parseAction(input string) (Result, bool) {
	lower := strings.ToLower(input)
	for _, kw := range actionKeywords {
		if strings.Contains(lower, strings.ToLower(kw.keyword)) {
			return Result{Type: TypeAction, Action: kw.action}, true
		}
	}
	return Result{}, false
}
