// Package classifier implements the Trigger Classifier (spec §4.4, C6):
// a pure function from (history buffers, Observation) to zero or more
// Triggers. Given the same history state and observation it always
// yields the same triggers (spec: "the classifier is pure").
package classifier

import "time"

// Trigger is a named, time-stamped event produced by the classifier
// (spec §3).
type Trigger struct {
	Name        string
	Context     map[string]any
	TS          time.Time
	ActiveTitle string
	ActiveApp   string
	// Importance is left unset by the classifier; the brain (C8) owns
	// the importance table per spec §4.7 and stamps this field when it
	// receives the trigger.
	Importance string
}
