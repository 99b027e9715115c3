package classifier

import "strings"

// Category is the closed taxonomy of active-window title categories
// (spec §4.4: "≥20 categories"). Categories and their associated
// triggers, along with per-trigger default cooldowns, are shipped
// verbatim as configuration data, not code, per spec §4.4.
type Category string

const (
	CategoryShopping   Category = "shopping"
	CategoryCheckout   Category = "checkout"
	CategoryWiki       Category = "wiki"
	CategoryCoding     Category = "coding"
	CategoryTerminal   Category = "terminal"
	CategoryDocument   Category = "document"
	CategoryDevWeb     Category = "dev_web"
	CategorySocial     Category = "social"
	CategoryVideo      Category = "video"
	CategoryGaming     Category = "gaming"
	CategoryNews       Category = "news"
	CategorySearch     Category = "search"
	CategoryEmail      Category = "email"
	CategoryMusic      Category = "music"
	CategoryFinance    Category = "finance"
	CategoryTravel     Category = "travel"
	CategoryRecipe     Category = "recipe"
	CategoryHealth     Category = "health"
	CategoryJobSearch  Category = "job_search"
	CategoryLearning   Category = "learning"
	CategoryMeeting    Category = "meeting"
	CategoryDesign     Category = "design"
)

// categoryDef pairs a category's title substrings with the trigger name
// it stamps and that trigger's default cooldown.
type categoryDef struct {
	category   Category
	substrings []string
	trigger    string
	cooldown   int // milliseconds
}

// categoryTable is the closed taxonomy, shipped as data. Order matters:
// the first matching category wins for a given title.
var categoryTable = []categoryDef{
	{CategoryCheckout, []string{"checkout", "order confirm", "payment method", "review your order"}, "checkout_detected", 300_000},
	{CategoryShopping, []string{"amazon", "ebay", "etsy", "aliexpress", "/cart", "shop.", "shopping"}, "shopping_detected", 120_000},
	{CategoryWiki, []string{"wikipedia", " wiki "}, "wiki_detected", 60_000},
	{CategoryCoding, []string{"visual studio code", "vscode", "intellij", "pycharm", "goland", "sublime text", "neovim"}, "coding_detected", 180_000},
	{CategoryTerminal, []string{"terminal", "iterm", "powershell", " bash", " zsh", "konsole", "alacritty"}, "terminal_detected", 180_000},
	{CategoryDocument, []string{"microsoft word", "google docs", "docs.google.com", "notion", "obsidian"}, "document_detected", 180_000},
	{CategoryDevWeb, []string{"localhost", "github.com", "gitlab.com", "stackoverflow.com", "developer.mozilla"}, "dev_web_detected", 180_000},
	{CategorySocial, []string{"facebook", "twitter", "x.com", "instagram", "reddit", "tiktok"}, "social_detected", 90_000},
	{CategoryVideo, []string{"youtube", "netflix", "twitch", "hulu", "vimeo"}, "video_detected", 120_000},
	{CategoryGaming, []string{"steam", "epic games", "battle.net", "playstation", "xbox"}, "gaming_detected", 120_000},
	{CategoryNews, []string{"cnn", "bbc", "nytimes", "reuters", " news"}, "news_detected", 120_000},
	{CategorySearch, []string{"google search", "bing.com", "duckduckgo", " - search"}, "search_detected", 60_000},
	{CategoryEmail, []string{"gmail", "outlook", "mail.yahoo", "inbox"}, "email_detected", 120_000},
	{CategoryMusic, []string{"spotify", "soundcloud", "apple music"}, "music_detected", 180_000},
	{CategoryFinance, []string{"paypal", "chase.com", "mint.com", "robinhood", "online banking"}, "finance_detected", 180_000},
	{CategoryTravel, []string{"expedia", "booking.com", "airbnb", "kayak.com"}, "travel_detected", 180_000},
	{CategoryRecipe, []string{"recipe", "allrecipes", "food network"}, "recipe_detected", 180_000},
	{CategoryHealth, []string{"webmd", "mayo clinic", "healthline"}, "health_detected", 180_000},
	{CategoryJobSearch, []string{"linkedin", "indeed.com", "glassdoor"}, "job_search_detected", 180_000},
	{CategoryLearning, []string{"coursera", "udemy", "khan academy"}, "learning_detected", 180_000},
	{CategoryMeeting, []string{"zoom meeting", "google meet", "microsoft teams", "webex"}, "meeting_detected", 90_000},
	{CategoryDesign, []string{"figma", "sketch", "adobe xd", "canva"}, "design_detected", 180_000},
}

// workCategories and funCategories partition the category set for the
// procrastination composite detector (spec §4.4).
var workCategories = map[Category]bool{
	CategoryCoding:   true,
	CategoryDocument: true,
	CategoryTerminal: true,
	CategoryDevWeb:   true,
}

var funCategories = map[Category]bool{
	CategorySocial: true,
	CategoryVideo:  true,
	CategoryGaming: true,
	CategoryNews:   true,
}

// errorSubstrings is the closed set of title substrings that indicate an
// error state (spec §4.4).
var errorSubstrings = []string{
	"exception", "stack trace", "traceback", "error:", "fatal:",
	"panic:", "segmentation fault", "is not a function", "nullpointerexception",
	"unhandled rejection",
}

// VisualTriggers is the closed set of trigger names that are enriched
// with a screen capture and cursor position at admission time (spec §4.5,
// GLOSSARY "Visual trigger"). Roughly 30 names per spec; this ships the
// full set this repo's detectors can produce plus headroom for the
// category table above.
var VisualTriggers = map[string]bool{
	"shopping_detected": true, "checkout_detected": true,
	"coding_detected": true, "terminal_detected": true, "dev_web_detected": true,
	"document_detected": true, "design_detected": true,
	"error_detected": true, "error_loop": true,
	"long_focus": true, "deep_focus": true, "social_scrolling": true,
	"wiki_detected": true, "wiki_rabbit_hole": true,
	"social_detected": true, "meeting_detected": true,
	"price_comparison": true, "research_mode": true,
	"repeated_search": true, "rapid_switching": true,
	"video_detected": true, "gaming_detected": true, "news_detected": true,
	"finance_detected": true, "travel_detected": true, "recipe_detected": true,
	"health_detected": true, "job_search_detected": true, "learning_detected": true,
	"music_detected": true, "email_detected": true,
}

// DefaultCooldowns is the full cooldown table (spec §4.5), shipped as
// data. It includes entries with no emitting detector in this repo
// (reserved names), per spec §9's open-question decision — only the
// names the detectors in this package actually produce are ever fired.
var DefaultCooldowns = buildDefaultCooldowns()

func buildDefaultCooldowns() map[string]int {
	m := map[string]int{
		"clipboard_copy":   10_000,
		"url_copied":       10_000,
		"code_copied":      10_000,
		"email_copied":     10_000,
		"phone_copied":     10_000,
		"long_copy":        10_000,
		"generic_copy":     10_000,
		"repeated_copy":    30_000,
		"app_switch":       20_000,
		"error_detected":   30_000,
		"error_loop":       120_000,
		"long_focus":       300_000,
		"deep_focus":       600_000,
		"late_night":       600_000,
		"dawn_coding":      600_000,
		"pre_lunch":        1_800_000,
		"end_of_work":      1_800_000,
		"weekend_work":     3_600_000,
		"wiki_rabbit_hole": 60_000,
		"price_comparison": 60_000,
		"research_mode":    60_000,
		"procrastination":  60_000,
		"repeated_search":  60_000,
		"rapid_switching":  60_000,
		"social_scrolling": 600_000,
		"idle_return":      60_000,
		// Reserved names with no emitting detector in this repo (spec §9).
		"mood_shift":        120_000,
		"theme_detected":    120_000,
		"voice_note":        120_000,
		"screenshot_taken":  60_000,
		"calendar_reminder": 300_000,
	}
	for _, c := range categoryTable {
		m[c.trigger] = c.cooldown
	}
	return m
}

// MatchCategory returns the first category whose substrings match the
// (already lower-cased) title, and its associated trigger name. Returns
// ("", "", false) if no category matches.
func MatchCategory(lowerTitle string) (Category, string, bool) {
	for _, c := range categoryTable {
		for _, sub := range c.substrings {
			if strings.Contains(lowerTitle, sub) {
				return c.category, c.trigger, true
			}
		}
	}
	return "", "", false
}

// IsErrorTitle reports whether title (already lower-cased) contains an
// error substring.
func IsErrorTitle(lowerTitle string) bool {
	for _, sub := range errorSubstrings {
		if strings.Contains(lowerTitle, sub) {
			return true
		}
	}
	return false
}
