package channel

import (
	"time"

	"github.com/nugget/companion-hub/internal/events"
	"github.com/nugget/companion-hub/internal/parser"
	"github.com/nugget/companion-hub/internal/petstate"
)

// HandleParsedCommand is the Command Parser's (C2) entry point onto the
// channel's command bus (spec §2: "Parser runs out-of-band on chat-bot
// input and produces synthesized commands on the same internal command
// bus that the channel feeds"). Unlike a WS peer's inbound Message, a
// parsed Result has no originating peerConn to reply to and the peer
// has not already rendered it locally, so state-affecting results are
// applied directly to PetState and every result is also broadcast to
// the connected peer/front-end as the equivalent outbound command.
func (c *Channel) HandleParsedCommand(result parser.Result) {
	c.Bus.Publish(events.Event{
		Timestamp: time.Now(),
		Source:    events.SourceParser,
		Kind:      events.KindParsed,
		Data:      map[string]any{"type": string(result.Type)},
	})

	switch result.Type {
	case parser.TypeSetting:
		c.applyParsedSetting(result)
	case parser.TypeCharacterChange:
		c.broadcastParsed(CmdSetCharacter, map[string]any{"concept": result.Concept})
	case parser.TypeSmartFileOp:
		c.broadcastParsed(CmdSmartFileOp, map[string]any{
			"source":       result.Source,
			"filter":       result.Filter,
			"target":       result.Target,
			"autoCategory": result.AutoCategory,
		})
	case parser.TypeAction:
		c.applyParsedAction(result)
	case parser.TypeSpeak:
		c.broadcastParsed(CmdSpeak, map[string]any{"text": result.Text})
	default:
		c.Logger.Debug("unrecognised parsed result type", "type", result.Type)
	}
}

func (c *Channel) applyParsedSetting(result parser.Result) {
	if result.Mode != "" {
		mode := petstate.Mode(result.Mode)
		if _, err := c.Store.Apply(petstate.Patch{Mode: &mode}); err != nil {
			c.Logger.Warn("parsed setting rejected", "error", err)
		} else {
			c.broadcastParsed(CmdSetMode, map[string]any{"mode": result.Mode})
		}
	}
	if result.Preset != "" {
		c.broadcastParsed(CmdSetCharacter, map[string]any{"preset": result.Preset})
	}
}

func (c *Channel) applyParsedAction(result parser.Result) {
	state := result.Action
	if _, err := c.Store.Apply(petstate.Patch{Action: &state}); err != nil {
		c.Logger.Warn("parsed action rejected", "error", err)
		return
	}
	c.broadcastParsed(CmdAction, map[string]any{"state": result.Action})
}

// broadcastParsed forwards a synthesized command to the connected
// peer/front-end; a missing peer is expected (nothing to notify) rather
// than an error worth logging.
func (c *Channel) broadcastParsed(typ string, payload map[string]any) {
	if err := c.Broadcast(typ, payload); err != nil {
		c.Logger.Debug("failed to broadcast parsed command", "type", typ, "error", err)
	}
}
