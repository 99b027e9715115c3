// Command hub runs the companion hub: the long-lived local process that
// mediates between an external AI brain driving a desktop companion and
// the local OS observers (active window, clipboard, idle time, clock).
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nugget/companion-hub/internal/admission"
	"github.com/nugget/companion-hub/internal/brain"
	"github.com/nugget/companion-hub/internal/buildinfo"
	"github.com/nugget/companion-hub/internal/channel"
	"github.com/nugget/companion-hub/internal/classifier"
	"github.com/nugget/companion-hub/internal/clock"
	"github.com/nugget/companion-hub/internal/config"
	"github.com/nugget/companion-hub/internal/dispatcher"
	"github.com/nugget/companion-hub/internal/events"
	"github.com/nugget/companion-hub/internal/llm"
	"github.com/nugget/companion-hub/internal/mqttmirror"
	"github.com/nugget/companion-hub/internal/observer"
	"github.com/nugget/companion-hub/internal/pairing"
	"github.com/nugget/companion-hub/internal/parser"
	"github.com/nugget/companion-hub/internal/petstate"
	"github.com/nugget/companion-hub/internal/probe"
	"github.com/nugget/companion-hub/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: hub [-config path] <command>")
		fmt.Fprintln(os.Stderr, "commands:")
		fmt.Fprintln(os.Stderr, "  serve    run the hub (default if no command given)")
		fmt.Fprintln(os.Stderr, "  pair     print the loopback WebSocket URL as a QR code")
		fmt.Fprintln(os.Stderr, "  version  print build info")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cmd := "serve"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	switch cmd {
	case "serve":
		runServe(logger, *configPath)
	case "pair":
		runPair(logger, *configPath)
	case "version":
		fmt.Println(buildinfo.String())
		for k, v := range buildinfo.Info() {
			fmt.Printf("  %-12s %s\n", k+":", v)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		flag.Usage()
		os.Exit(1)
	}
}

func loadConfig(logger *slog.Logger, explicit string) *config.Config {
	path, err := config.FindConfig(explicit)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("failed to load config", "path", path, "error", err)
		os.Exit(1)
	}
	return cfg
}

func runPair(logger *slog.Logger, configPath string) {
	cfg := loadConfig(logger, configPath)
	if err := pairing.Print(os.Stdout, cfg.Channel.Port); err != nil {
		logger.Error("pairing", "error", err)
		os.Exit(1)
	}
}

func runServe(logger *slog.Logger, configPath string) {
	logger.Info("starting companion-hub", "version", buildinfo.Version, "commit", buildinfo.GitCommit, "built", buildinfo.BuildTime)

	cfg := loadConfig(logger, configPath)

	if cfg.LogLevel != "" {
		level, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			logger.Error("invalid log_level in config", "error", err)
			os.Exit(1)
		}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: config.ReplaceLogLevelNames,
		}))
	}

	logger.Info("config loaded", "channel_port", cfg.Channel.Port, "brain_enabled", cfg.Brain.Enabled, "mqtt_enabled", cfg.MQTT.Enabled)

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logger.Error("failed to create data directory", "path", dataDir, "error", err)
		os.Exit(1)
	}

	bus := events.New()
	clk := clock.Real{}
	p := probe.NewExecProbe()

	store := petstate.New(petstate.State{
		Mode:           petstate.ModePet,
		Position:       petstate.Position{Edge: petstate.EdgeBottom},
		Action:         "idle",
		Emotion:        "neutral",
		EvolutionStage: 1,
	})

	ch := channel.New(store, p, bus, logger.With("component", "channel"))
	if err := ch.Start(cfg.Channel.Address, cfg.Channel.Port); err != nil {
		logger.Error("failed to start channel", "error", err)
		os.Exit(1)
	}

	var llmClient llm.Client
	if cfg.Anthropic.Configured() {
		anthropicClient := llm.NewAnthropicClient(cfg.Anthropic.APIKey, logger.With("component", "llm"))
		llmClient = anthropicClient
		if err := anthropicClient.Ping(context.Background()); err != nil {
			logger.Warn("anthropic ping failed", "error", err)
		} else {
			logger.Info("anthropic ping succeeded")
		}
	}

	fallbackBrain := brain.New(llmClient, clk, bus, logger.With("component", "brain"))
	if cfg.Brain.BatchWindowMS > 0 {
		fallbackBrain.BatchWindow = time.Duration(cfg.Brain.BatchWindowMS) * time.Millisecond
	}

	dispatch := &dispatcher.Dispatcher{
		Channel:     ch,
		Brain:       fallbackBrain,
		BrainActive: cfg.Brain.Enabled && cfg.Anthropic.Configured(),
		Bus:         bus,
		Logger:      logger.With("component", "dispatcher"),
	}

	gate := admission.New(p, clk, bus, logger.With("component", "admission"))
	cls := classifier.New()

	telemetryPath := dataDir + "/telemetry.db"
	telemetryStore, err := telemetry.Open(telemetryPath)
	if err != nil {
		logger.Error("failed to open telemetry database", "path", telemetryPath, "error", err)
		os.Exit(1)
	}
	defer telemetryStore.Close()
	var counters telemetry.Counters

	var mirror *mqttmirror.Publisher
	if cfg.MQTT.Enabled {
		mirror = mqttmirror.New(cfg.MQTT, logger.With("component", "mqttmirror"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if mirror != nil {
		if err := mirror.Start(ctx); err != nil {
			logger.Error("failed to start mqtt mirror", "error", err)
		}
	}

	go telemetry.Run(ctx, telemetryStore, &counters, 60*time.Second, time.Now, logger.With("component", "telemetry"))
	go runTelemetryBridge(ctx, bus, &counters, mirror)

	obsCh := make(chan observer.Observation, 64)
	obsSet := &observer.Set{
		Probe:        p,
		Clock:        clk,
		ProbeTimeout: time.Duration(cfg.Probe.TimeoutMS) * time.Millisecond,
		Logger:       logger.With("component", "observer"),
		Out:          obsCh,
	}
	go obsSet.Run(ctx)

	go runPipeline(ctx, obsCh, cls, gate, dispatch, ch, logger.With("component", "pipeline"))
	go runMetricsBroadcast(ctx, ch, &counters, 60*time.Second)
	go runBrainExecutionBridge(ctx, bus, store, ch, logger.With("component", "brain-bridge"))
	go runChatStdin(ctx, ch, logger.With("component", "parser"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := ch.Stop(shutdownCtx); err != nil {
		logger.Warn("channel shutdown", "error", err)
	}
	if mirror != nil {
		if err := mirror.Stop(shutdownCtx); err != nil {
			logger.Warn("mqtt mirror shutdown", "error", err)
		}
	}

	logger.Info("companion-hub stopped")
}

// runPipeline is the single classifier/admission writer task (spec §5):
// one goroutine reads observations, classifies, admits, and dispatches,
// so the classifier's history buffers and the admission gate's cooldown
// map never need their own locks against concurrent callers.
func runPipeline(ctx context.Context, obs <-chan observer.Observation, cls *classifier.Classifier, gate *admission.Gate, dispatch *dispatcher.Dispatcher, ch *channel.Channel, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case o, ok := <-obs:
			if !ok {
				return
			}
			broadcastUserEvent(ch, o)
			for _, trig := range cls.Classify(o) {
				admitted, ok := gate.Admit(ctx, trig)
				if !ok {
					continue
				}
				dispatch.Dispatch(ctx, admitted)
			}
		}
	}
}

// broadcastUserEvent maps raw observations onto the spec §6 user_event
// notification for hub-synthesized front-end events — distinct from
// proactive_trigger, which only carries classified/admitted triggers.
func broadcastUserEvent(ch *channel.Channel, o observer.Observation) {
	switch o.Kind {
	case observer.KindActiveTitleChanged:
		ch.BroadcastUserEvent("desktop_changed", map[string]any{"title": o.Title})
	case observer.KindTick:
		ch.BroadcastUserEvent("time_change", map[string]any{"hour": o.Hour, "minute": o.Minute, "weekday": o.Weekday.String()})
	case observer.KindIdleEntered:
		ch.BroadcastUserEvent("user_idle", map[string]any{"duration_s": o.Duration.Seconds()})
	case observer.KindClipboardText:
		if strings.HasPrefix(strings.ToLower(o.Text), "http://") || strings.HasPrefix(strings.ToLower(o.Text), "https://") {
			ch.BroadcastUserEvent("browsing", map[string]any{"url": o.Text})
		}
	}
}

// runMetricsBroadcast periodically sends the telemetry counters to the
// connected peer as metrics_report (spec §6), on the same cadence the
// telemetry store snapshots them to disk.
func runMetricsBroadcast(ctx context.Context, ch *channel.Channel, counters *telemetry.Counters, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := counters.Snapshot(time.Now())
			ch.BroadcastMetrics(map[string]any{
				"triggersFired":    snap.TriggersFired,
				"triggersDropped":  snap.TriggersDropped,
				"brainInvocations": snap.BrainInvocations,
				"batchCollapses":   snap.BatchCollapses,
				"peerConnected":    snap.PeerConnected,
			})
		}
	}
}

// runTelemetryBridge subscribes to the operational event bus and keeps
// the telemetry counters and the MQTT mirror in sync with dispatched
// triggers, without threading either dependency through the
// classifier/admission/dispatcher constructors.
func runTelemetryBridge(ctx context.Context, bus *events.Bus, counters *telemetry.Counters, mirror *mqttmirror.Publisher) {
	sub := bus.Subscribe(64)
	defer bus.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			switch e.Kind {
			case events.KindTriggerFired:
				route, _ := e.Data["route"].(string)
				name, _ := e.Data["trigger"].(string)
				switch route {
				case "channel", "brain":
					counters.IncTriggersFired()
					if mirror != nil && name != "" {
						mirror.MirrorTrigger(ctx, name)
					}
				case "dropped":
					counters.IncTriggersDropped()
				}
			case events.KindTriggerDropped:
				counters.IncTriggersDropped()
			case events.KindBrainResponse:
				counters.IncBrainInvocations()
			case events.KindBatchCollapsed:
				counters.IncBatchCollapses()
			case events.KindPeerConnected:
				counters.SetPeerConnected(true)
			case events.KindPeerDisconnected:
				counters.SetPeerConnected(false)
			}
		}
	}
}

// runBrainExecutionBridge completes the fallback brain's execution step
// (spec §4.7): a successful KindBrainResponse carries a derived
// speak/action/emote response that brain.Brain.execute only announces on
// the bus, so this is the subscriber that actually applies it to
// PetState and broadcasts it to the connected peer/front-end, the way
// handleInbound's applyEmote/applyAction do for peer-originated commands.
func runBrainExecutionBridge(ctx context.Context, bus *events.Bus, store *petstate.Store, ch *channel.Channel, logger *slog.Logger) {
	sub := bus.Subscribe(64)
	defer bus.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			if e.Kind != events.KindBrainResponse {
				continue
			}
			if ok, _ := e.Data["ok"].(bool); !ok {
				continue
			}
			speech, _ := e.Data["speech"].(string)
			action, _ := e.Data["action"].(string)
			emotion, _ := e.Data["emotion"].(string)

			patch := petstate.Patch{}
			if action != "" {
				patch.Action = &action
			}
			if emotion != "" {
				patch.Emotion = &emotion
			}
			if patch.Action != nil || patch.Emotion != nil {
				if _, err := store.Apply(patch); err != nil {
					logger.Warn("brain response rejected", "error", err)
				}
			}

			if speech != "" {
				if err := ch.Broadcast(channel.CmdSpeak, map[string]any{"text": speech}); err != nil {
					logger.Debug("failed to broadcast brain speech", "error", err)
				}
			}
			if action != "" {
				if err := ch.Broadcast(channel.CmdAction, map[string]any{"state": action}); err != nil {
					logger.Debug("failed to broadcast brain action", "error", err)
				}
			}
			if emotion != "" {
				if err := ch.Broadcast(channel.CmdEmote, map[string]any{"emotion": emotion}); err != nil {
					logger.Debug("failed to broadcast brain emote", "error", err)
				}
			}
		}
	}
}

// runChatStdin is the Command Parser's (C2) concrete entry point onto
// the channel's command bus (spec §2/§4.2): each line of standalone
// free-text input (e.g. piped in from a chat front-end) is parsed and
// fed through Channel.HandleParsedCommand on the same inbound path the
// channel uses for WS-peer commands.
func runChatStdin(ctx context.Context, ch *channel.Channel, logger *slog.Logger) {
	home, err := os.UserHomeDir()
	if err != nil {
		logger.Warn("failed to resolve home directory for parser", "error", err)
	}
	resolver := parser.HomeResolver{Home: home}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logger.Warn("stdin scan failed", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			ch.HandleParsedCommand(parser.Parse(line, resolver))
		}
	}
}
