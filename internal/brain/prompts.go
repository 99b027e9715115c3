package brain

import (
	"fmt"
	"strings"

	"github.com/nugget/companion-hub/internal/admission"
)

// promptTemplates is the closed per-trigger template table (spec §4.7:
// "table of ~30 templates"), shipped as data. Every template except
// app_switch takes its placeholders in a fixed order: title first, then
// app — templates needing only one value use only %q/%s for the title.
// app_switch takes app first, then title (see buildPrompt).
var promptTemplates = map[string]string{
	"shopping_detected":   "The user is browsing a shopping page titled %q in %s. React with brief, in-character curiosity about what they're looking at.",
	"checkout_detected":   "The user is at checkout on %q in %s. Respond supportively, maybe a light nudge to double-check the total before confirming.",
	"wiki_detected":       "The user opened a Wikipedia article titled %q. Show mild interest in the topic.",
	"wiki_rabbit_hole":    "The user has jumped between several Wikipedia articles in the last minute, currently %q. Gently note the rabbit hole with affection, not judgment.",
	"coding_detected":     "The user is coding on %q in %s. Stay quiet and supportive; a short encouraging aside is fine.",
	"terminal_detected":   "The user is in a terminal titled %q (%s). Keep it brief — don't interrupt a focused shell session.",
	"document_detected":   "The user is writing, document titled %q in %s. Offer quiet encouragement.",
	"dev_web_detected":    "The user is reading developer docs/reference at %q in %s. A short relevant aside is welcome.",
	"social_detected":     "The user opened %q in %s. A light, non-judgmental comment about taking a break is fine.",
	"social_scrolling":    "The user has been scrolling %q in %s for a while now. Gently suggest a break without nagging.",
	"video_detected":      "The user is watching something titled %q on %s. A brief, friendly comment about what they're watching.",
	"gaming_detected":     "The user is playing, window titled %q (%s). Cheer them on briefly.",
	"news_detected":       "The user is reading news at %q on %s. A short, neutral acknowledgment is enough.",
	"search_detected":     "The user is searching for %q on %s. Offer a quick guess at what they might be looking for.",
	"email_detected":      "The user is in their inbox, titled %q (%s). Keep any comment brief and unobtrusive.",
	"music_detected":      "The user opened %q in %s. A brief comment about the music is welcome.",
	"finance_detected":    "The user is looking at financial details on %q in %s. Be supportive and low-key; money talk deserves a gentle tone.",
	"travel_detected":     "The user is browsing travel options at %q on %s. Show enthusiasm about a possible trip.",
	"recipe_detected":     "The user is looking at a recipe titled %q on %s. A short, appetite-friendly comment fits.",
	"health_detected":     "The user is reading about health topics at %q on %s. Keep tone calm and supportive, not alarmist.",
	"job_search_detected": "The user is job hunting, titled %q (%s). Offer quiet encouragement.",
	"learning_detected":   "The user is taking a course or tutorial titled %q on %s. Cheer them on briefly.",
	"meeting_detected":    "The user just joined a meeting titled %q (%s). Stay unobtrusive — no comment needed beyond a quiet acknowledgment.",
	"design_detected":     "The user is working in a design tool, titled %q (%s). A short, appreciative comment fits.",
	"error_detected":      "The user just hit an error: %q in %s. Offer brief, reassuring support — not advice unless asked.",
	"error_loop":          "The user has hit repeated errors, most recently %q in %s. Offer calm encouragement; debugging loops are frustrating.",
	"app_switch":          "The user switched to %s, window titled %q.",
	"repeated_copy":       "The user has copied several things in quick succession, most recently related to %q.",
	"url_copied":          "The user copied a link: %q.",
	"code_copied":         "The user copied a code snippet.",
	"email_copied":        "The user copied an email address.",
	"phone_copied":        "The user copied a phone number.",
	"long_copy":           "The user copied a large block of text.",
	"generic_copy":        "The user copied something to the clipboard.",
	"long_focus":          "The user has been on %q in %s for a while with sustained attention. A brief supportive comment fits.",
	"deep_focus":          "The user has been deep in %q (%s) for an extended stretch. Offer quiet, supportive presence.",
	"price_comparison":    "The user is comparing prices across shopping sites, currently on %q.",
	"research_mode":       "The user appears to be researching something, currently on %q in %s.",
	"procrastination":     "The user has been bouncing between work and distraction, currently on %q. Offer a gentle, non-judgmental nudge back to focus.",
	"repeated_search":     "The user has searched for similar things several times, most recently %q.",
	"rapid_switching":     "The user has been switching apps rapidly, currently on %q.",
	"idle_return":         "The user just came back after being away. Offer a brief, warm welcome-back.",
	"late_night":          "It's late at night and the user is still on %q in %s. A gentle, caring comment about the hour fits.",
	"dawn_coding":         "The user is coding in the very early hours, on %q in %s. Acknowledge the dedication, gently.",
	"pre_lunch":           "It's nearly lunchtime. A light, friendly nudge about eating is fine if it fits the moment.",
	"end_of_work":         "It's around the end of the workday. A brief, low-key comment about wrapping up is fine.",
	"weekend_work":        "The user is working on %q in %s during the weekend. A gentle, caring comment fits.",
}

// defaultPromptTemplate is used for any trigger name not in the table
// (covers the reserved, unemitted names spec §9 notes should still have
// cooldown entries).
const defaultPromptTemplate = "Something happened: %q in %s. React briefly and in character."

// buildPrompt composes the one-paragraph prompt for an admitted trigger,
// appending optional "screen attached" and recent-interaction context
// per spec §4.7. app_switch is the one template whose two placeholders
// run (app, title) instead of (title, app) — handled as a special case.
func buildPrompt(t admission.Admitted, recent []string) string {
	tmpl, ok := promptTemplates[t.Name]
	if !ok {
		tmpl = defaultPromptTemplate
	}

	var body string
	switch {
	case t.Name == "app_switch":
		body = fmt.Sprintf(tmpl, t.ActiveApp, t.ActiveTitle)
	case strings.Count(tmpl, "%") == 0:
		body = tmpl
	case strings.Count(tmpl, "%") == 1:
		body = fmt.Sprintf(tmpl, t.ActiveTitle)
	default:
		body = fmt.Sprintf(tmpl, t.ActiveTitle, t.ActiveApp)
	}

	var b strings.Builder
	b.WriteString(body)
	if t.HasVisual {
		b.WriteString(" A screenshot of the current screen is attached for context.")
	}
	if len(recent) > 0 {
		b.WriteString(" Recent interactions: ")
		b.WriteString(strings.Join(recent, "; "))
		b.WriteString(".")
	}
	return b.String()
}
