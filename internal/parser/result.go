// Package parser implements the Command Parser (spec §4.2, C2): a pure
// function from free-text user input (e.g. from an optional chat bot)
// to one of five tagged intent records, evaluated in a fixed priority
// order where the first match wins. Mode switches and preset-character
// selections both come back as TypeSetting, told apart by Mode/Preset.
package parser

// Type is the closed set of intent records the parser can produce.
type Type string

const (
	TypeSetting         Type = "setting"
	TypeCharacterChange Type = "character_change"
	TypeSmartFileOp     Type = "smart_file_op"
	TypeAction          Type = "action"
	TypeSpeak           Type = "speak"
)

// Result is the tagged record produced by Parse. Only the fields
// relevant to Type are populated.
type Result struct {
	Type Type

	// TypeSetting
	Mode   string // "pet" | "incarnation" | "both", empty if not set
	Preset string // named preset character, empty if not set

	// TypeCharacterChange
	Concept string

	// TypeSmartFileOp
	Source       string // resolved absolute path
	Filter       string // e.g. ".md", "*"
	Target       string // folder name, or "auto"
	AutoCategory bool

	// TypeAction
	Action string

	// TypeSpeak (fallback)
	Text string
}
