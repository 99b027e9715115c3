package classifier

import "strings"

// titleSeparators are all searched; whichever occurs furthest right in
// the title splits it, and the app name is the last token (spec §4.4).
var titleSeparators = []string{" - ", " | ", " — ", " – "}

// extractApp returns the app name — the last token after the final
// separator — or the whole title if no separator is present.
func extractApp(title string) string {
	bestIdx := -1
	bestSepLen := 0
	for _, sep := range titleSeparators {
		if idx := strings.LastIndex(title, sep); idx > bestIdx {
			bestIdx = idx
			bestSepLen = len(sep)
		}
	}
	if bestIdx < 0 {
		return title
	}
	return title[bestIdx+bestSepLen:]
}
