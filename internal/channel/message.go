// Package channel implements the WebSocket command/event channel (spec
// §4.1, C3): a loopback-only, single-peer JSON socket that mirrors
// PetState to the connected peer and dispatches the peer's inbound
// commands.
package channel

import (
	"encoding/json"
	"time"
)

// Message is the wire envelope for every frame exchanged over the
// channel: one JSON object per WebSocket text message (spec §4.1,
// "one JSON object per WebSocket text message").
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// Inbound command types (peer → hub), spec §6.
const (
	CmdAction            = "action"
	CmdMove              = "move"
	CmdEmote             = "emote"
	CmdSpeak             = "speak"
	CmdThink             = "think"
	CmdCarryFile         = "carry_file"
	CmdDropFile          = "drop_file"
	CmdSmartFileOp       = "smart_file_op"
	CmdSetMode           = "set_mode"
	CmdEvolve            = "evolve"
	CmdSetCharacter      = "set_character"
	CmdResetCharacter    = "reset_character"
	CmdSetPersona        = "set_persona"
	CmdJumpTo            = "jump_to"
	CmdRappel            = "rappel"
	CmdReleaseThread     = "release_thread"
	CmdMoveToCenter      = "move_to_center"
	CmdWalkOnWindow      = "walk_on_window"
	CmdRegisterMovement  = "register_movement"
	CmdCustomMove        = "custom_move"
	CmdStopCustomMove    = "stop_custom_move"
	CmdListMovements     = "list_movements"
	CmdQueryState        = "query_state"
	CmdQueryScreen       = "query_screen"
	CmdQueryWindows      = "query_windows"
	CmdAIDecision        = "ai_decision"
)

// Outbound event types (hub → peer), spec §6.
const (
	EvtSync             = "sync"
	EvtStateResponse    = "state_response"
	EvtPetStateUpdate   = "pet_state_update"
	EvtHeartbeat        = "heartbeat"
	EvtScreenCapture    = "screen_capture"
	EvtWindowPositions  = "window_positions"
	EvtUserEvent        = "user_event"
	EvtProactiveTrigger = "proactive_trigger"
	EvtMetricsReport    = "metrics_report"
)

// emotionToAction is the fixed emote → action table (spec §6's `emote`
// row).
var emotionToAction = map[string]string{
	"happy":        "excited",
	"curious":      "walking",
	"sleepy":       "sleeping",
	"scared":       "scared",
	"playful":      "playing",
	"proud":        "excited",
	"neutral":      "idle",
	"focused":      "idle",
	"affectionate": "interacting",
}

type proactiveTriggerPayload struct {
	Trigger     string         `json:"trigger"`
	Context     map[string]any `json:"context,omitempty"`
	Timestamp   int64          `json:"timestamp"`
	ActiveTitle string         `json:"activeTitle,omitempty"`
	ActiveApp   string         `json:"activeApp,omitempty"`
}

type screenCapturePayload struct {
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type windowPositionsPayload struct {
	Windows []windowInfoJSON `json:"windows"`
}

type windowInfoJSON struct {
	Title string `json:"title"`
	App   string `json:"app"`
}

type setModePayload struct {
	Mode string `json:"mode"`
}

type evolvePayload struct {
	Stage int `json:"stage"`
}

type actionPayload struct {
	State      string `json:"state"`
	DurationMS int    `json:"duration,omitempty"`
}

type emotePayload struct {
	Emotion string `json:"emotion"`
}

type moveTo struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Method string `json:"method,omitempty"`
}

type aiDecisionPayload struct {
	Action  string  `json:"action,omitempty"`
	Speech  string  `json:"speech,omitempty"`
	Emotion string  `json:"emotion,omitempty"`
	MoveTo  *moveTo `json:"moveTo,omitempty"`
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}

func unixNow() int64 {
	return time.Now().Unix()
}
