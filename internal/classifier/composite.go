package classifier

import "time"

// Composite and time-trigger thresholds (spec §4.4).
const (
	wikiRabbitWindow      = 60 * time.Second
	wikiRabbitMinDistinct = 3

	priceCompareWindow      = 60 * time.Second
	priceCompareMinDistinct = 3

	researchWindow       = 30 * time.Second
	researchMinSearches  = 1
	researchMinCopies    = 2

	procrastinationWindow     = 60 * time.Second
	procrastinationMinSwitch  = 3

	repeatedSearchWindow      = 60 * time.Second
	repeatedSearchMinDistinct = 3

	rapidSwitchWindow   = 60 * time.Second
	rapidSwitchMinCount = 5

	longFocusDuration = 10 * time.Minute
	deepFocusDuration = 20 * time.Minute

	socialScrollDuration = 10 * time.Minute

	repeatedCopyWindow   = 60 * time.Second
	repeatedCopyMinCount = 3

	errorLoopWindow   = 300 * time.Second
	errorLoopMinCount = 3
)

// detectWikiRabbitHole fires when >=3 distinct wiki-category titles
// appeared in the last 60s.
func detectWikiRabbitHole(h *history, now time.Time) bool {
	return countDistinctForCategory(h, now, wikiRabbitWindow, CategoryWiki) >= wikiRabbitMinDistinct
}

// detectPriceComparison fires when >=3 distinct shopping-category titles
// appeared in the last 60s.
func detectPriceComparison(h *history, now time.Time) bool {
	return countDistinctForCategory(h, now, priceCompareWindow, CategoryShopping) >= priceCompareMinDistinct
}

func countDistinctForCategory(h *history, now time.Time, window time.Duration, cat Category) int {
	seen := map[string]struct{}{}
	titles := h.title.since(now, window)
	cats := h.category.since(now, window)
	// category ring and title ring are appended in lockstep by the
	// classifier, so index i of each corresponds to the same observation.
	n := len(titles)
	if len(cats) < n {
		n = len(cats)
	}
	for i := 0; i < n; i++ {
		if cats[i].value == string(cat) {
			seen[titles[i].value] = struct{}{}
		}
	}
	return len(seen)
}

// detectResearchMode fires when >=1 search title and >=2 copy events
// occurred in the last 30s.
func detectResearchMode(h *history, now time.Time) bool {
	searches := countDistinctForCategory(h, now, researchWindow, CategorySearch)
	copies := h.clip.countSince(now, researchWindow)
	return searches >= researchMinSearches && copies >= researchMinCopies
}

// detectProcrastination fires when >=3 alternations between the work
// and fun category sets occurred in the last 60s.
func detectProcrastination(h *history, now time.Time) bool {
	cats := h.category.since(now, procrastinationWindow)
	alternations := 0
	var lastSide int // 0=unknown, 1=work, 2=fun
	for _, c := range cats {
		side := 0
		if workCategories[Category(c.value)] {
			side = 1
		} else if funCategories[Category(c.value)] {
			side = 2
		} else {
			continue
		}
		if lastSide != 0 && side != lastSide {
			alternations++
		}
		lastSide = side
	}
	return alternations >= procrastinationMinSwitch
}

// detectRepeatedSearch fires when >=3 distinct search titles occurred in
// the last 60s.
func detectRepeatedSearch(h *history, now time.Time) bool {
	return countDistinctForCategory(h, now, repeatedSearchWindow, CategorySearch) >= repeatedSearchMinDistinct
}

// detectRapidSwitching fires when >=5 app changes occurred in the last 60s.
func detectRapidSwitching(h *history, now time.Time) bool {
	return h.appSwitch.countSince(now, rapidSwitchWindow) >= rapidSwitchMinCount
}

// detectLongFocus fires when the same title has been held for >=10min.
func detectLongFocus(h *history, now time.Time) bool {
	return !h.titleChanged.IsZero() && now.Sub(h.titleChanged) >= longFocusDuration
}

// detectDeepFocus fires when the same coding/document/terminal app has
// been held for >=20min.
func detectDeepFocus(h *history, now time.Time, currentCategory Category) bool {
	switch currentCategory {
	case CategoryCoding, CategoryDocument, CategoryTerminal:
	default:
		return false
	}
	return !h.appChanged.IsZero() && now.Sub(h.appChanged) >= deepFocusDuration
}

// detectSocialScrolling fires when the social category has been held
// for >=10min — an alternate path to the same cooldown gate as the
// category trigger.
func detectSocialScrolling(h *history, now time.Time, currentCategory Category) bool {
	return currentCategory == CategorySocial && !h.appChanged.IsZero() && now.Sub(h.appChanged) >= socialScrollDuration
}

// detectRepeatedCopy fires when >=3 clipboard events occurred in 60s.
func detectRepeatedCopy(h *history, now time.Time) bool {
	return h.clip.countSince(now, repeatedCopyWindow) >= repeatedCopyMinCount
}

// detectErrorLoop fires when >=3 error titles occurred in 300s.
func detectErrorLoop(h *history, now time.Time) bool {
	return h.errors.countSince(now, errorLoopWindow) >= errorLoopMinCount
}
