package channel

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/nugget/companion-hub/internal/petstate"
	"github.com/nugget/companion-hub/internal/probe"
)

// queryTimeout bounds the Platform Probe calls made on behalf of
// query_screen / query_windows (spec §5: "bounded by a per-call timeout
// of 3-5s").
const queryTimeout = 5 * time.Second

// handleInbound dispatches one parsed inbound command (spec §4.1,
// §6). Unknown types are logged and otherwise ignored (spec §8
// invariant 2: no mutation, no outbound message).
func (c *Channel) handleInbound(p *peerConn, msg Message) {
	switch msg.Type {
	case CmdQueryState:
		c.replyStateResponse(p)
	case CmdQueryScreen:
		c.replyScreenCapture(p)
	case CmdQueryWindows:
		c.replyWindowPositions(p)
	case CmdSetMode:
		c.applySetMode(msg)
	case CmdEvolve:
		c.applyEvolve(msg)
	case CmdAction:
		c.applyAction(msg)
	case CmdEmote:
		c.applyEmote(msg)
	case CmdAIDecision:
		c.applyAIDecision(msg)
	case CmdMove, CmdSpeak, CmdThink, CmdCarryFile, CmdDropFile, CmdSmartFileOp,
		CmdSetCharacter, CmdResetCharacter, CmdSetPersona, CmdJumpTo, CmdRappel,
		CmdReleaseThread, CmdMoveToCenter, CmdWalkOnWindow, CmdRegisterMovement,
		CmdCustomMove, CmdStopCustomMove, CmdListMovements:
		// Pass-through commands (spec §6): the hub has no PetState field
		// to mutate for these; they are the peer's own business.
		c.Logger.Debug("pass-through channel command", "type", msg.Type)
	default:
		c.Logger.Debug("unknown inbound command type", "type", msg.Type)
	}
}

func (c *Channel) replyStateResponse(p *peerConn) {
	if err := c.enqueue(p, EvtStateResponse, c.Store.Get()); err != nil {
		c.Logger.Warn("failed to enqueue state_response", "error", err)
	}
}

func (c *Channel) replyScreenCapture(p *peerConn) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	shot, err := c.Probe.CaptureScreen(ctx)
	if err != nil {
		c.Logger.Warn("query_screen probe failed", "error", err)
		return
	}
	payload := screenCapturePayload{
		Image:  base64.StdEncoding.EncodeToString(shot.JPEG),
		Width:  shot.Width,
		Height: shot.Height,
	}
	if err := c.enqueue(p, EvtScreenCapture, payload); err != nil {
		c.Logger.Warn("failed to enqueue screen_capture", "error", err)
	}
}

func (c *Channel) replyWindowPositions(p *peerConn) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	windows, err := c.Probe.WindowList(ctx)
	if err != nil {
		c.Logger.Warn("query_windows probe failed", "error", err)
		return
	}
	payload := windowPositionsPayload{Windows: toWindowInfoJSON(windows)}
	if err := c.enqueue(p, EvtWindowPositions, payload); err != nil {
		c.Logger.Warn("failed to enqueue window_positions", "error", err)
	}
}

func toWindowInfoJSON(windows []probe.WindowInfo) []windowInfoJSON {
	out := make([]windowInfoJSON, len(windows))
	for i, w := range windows {
		out[i] = windowInfoJSON{Title: w.Title, App: w.App}
	}
	return out
}

func (c *Channel) applySetMode(msg Message) {
	var payload setModePayload
	if err := unmarshalPayload(msg, &payload); err != nil {
		c.Logger.Warn("malformed set_mode payload", "error", err)
		return
	}
	mode := petstate.Mode(payload.Mode)
	if _, err := c.Store.Apply(petstate.Patch{Mode: &mode}); err != nil {
		c.Logger.Warn("set_mode rejected", "error", err)
	}
}

func (c *Channel) applyEvolve(msg Message) {
	var payload evolvePayload
	if err := unmarshalPayload(msg, &payload); err != nil {
		c.Logger.Warn("malformed evolve payload", "error", err)
		return
	}
	stage := payload.Stage
	if _, err := c.Store.Apply(petstate.Patch{EvolutionStage: &stage}); err != nil {
		c.Logger.Warn("evolve rejected", "error", err)
	}
}

func (c *Channel) applyAction(msg Message) {
	var payload actionPayload
	if err := unmarshalPayload(msg, &payload); err != nil {
		c.Logger.Warn("malformed action payload", "error", err)
		return
	}
	state := payload.State
	if _, err := c.Store.Apply(petstate.Patch{Action: &state}); err != nil {
		c.Logger.Warn("action rejected", "error", err)
		return
	}
	if payload.DurationMS > 0 {
		go c.resetActionAfter(time.Duration(payload.DurationMS) * time.Millisecond)
	}
}

func (c *Channel) resetActionAfter(d time.Duration) {
	time.Sleep(d)
	idle := "idle"
	if _, err := c.Store.Apply(petstate.Patch{Action: &idle}); err != nil {
		c.Logger.Warn("action reset rejected", "error", err)
	}
}

func (c *Channel) applyEmote(msg Message) {
	var payload emotePayload
	if err := unmarshalPayload(msg, &payload); err != nil {
		c.Logger.Warn("malformed emote payload", "error", err)
		return
	}
	action, ok := emotionToAction[payload.Emotion]
	if !ok {
		c.Logger.Debug("unrecognised emotion", "emotion", payload.Emotion)
		return
	}
	emotion := payload.Emotion
	if _, err := c.Store.Apply(petstate.Patch{Action: &action, Emotion: &emotion}); err != nil {
		c.Logger.Warn("emote rejected", "error", err)
	}
}

func (c *Channel) applyAIDecision(msg Message) {
	var payload aiDecisionPayload
	if err := unmarshalPayload(msg, &payload); err != nil {
		c.Logger.Warn("malformed ai_decision payload", "error", err)
		return
	}

	patch := petstate.Patch{}
	if payload.Action != "" {
		patch.Action = &payload.Action
	}
	if payload.Emotion != "" {
		patch.Emotion = &payload.Emotion
	}
	if payload.MoveTo != nil {
		pos := c.Store.Get().Position
		pos.X, pos.Y = payload.MoveTo.X, payload.MoveTo.Y
		patch.Position = &pos
	}

	if patch.Action != nil || patch.Emotion != nil || patch.Position != nil {
		if _, err := c.Store.Apply(patch); err != nil {
			c.Logger.Warn("ai_decision rejected", "error", err)
		}
	}
}

func unmarshalPayload(msg Message, v any) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(msg.Payload, v)
}
