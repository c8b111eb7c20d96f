package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/voiceform/agent"
	"github.com/tbxark/voiceform/config"
	"github.com/tbxark/voiceform/observe"
	"github.com/tbxark/voiceform/registry"
	"github.com/tbxark/voiceform/session"
	"github.com/tbxark/voiceform/speech"
	"github.com/tbxark/voiceform/types"
	"golang.org/x/sync/errgroup"
)

func main() {
	conf := flag.String("config", "", "path to a YAML config file; defaults are used when empty")
	mode := flag.String("mode", "voice", "voice runs the listening loop, text drives the agent one line at a time")
	flag.Parse()

	cfg := config.Default()
	if *conf != "" {
		var err error
		if cfg, err = config.Load(*conf); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel.Level()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := startApp(ctx, cfg, *mode); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, cfg *config.Config, mode string) error {
	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	flow, err := newFlow(cfg, reg)
	if err != nil {
		return err
	}
	con := newConsole(os.Stdin, os.Stdout)
	go func() {
		if err := con.read(); err != nil {
			slog.Warn("Console input failed", "error", err)
		}
	}()

	switch mode {
	case "voice":
		return runVoice(ctx, cfg, flow, con)
	case "text":
		return runText(ctx, flow, con)
	}
	return fmt.Errorf("unknown mode %q", mode)
}

// runVoice drives a session. The console acts as microphone and speaker;
// commands control the session while it listens.
func runVoice(ctx context.Context, cfg *config.Config, flow *agent.FormFlow, con *console) error {
	sess := session.New(flow, con, speech.NewSpeaker(con, speakerOptions(cfg)...),
		session.WithConfig(sessionConfig(cfg)),
		session.WithMetrics(observe.DefaultMetrics()),
		session.WithEventHandler(func(e session.Event) {
			slog.Debug("Session event", "session", e.Session, "kind", e.Kind, "text", e.Text, "error", e.Err)
		}),
	)
	con.println("Commands: /schema /summary /pause /resume /start /stop /quit")
	if err := sess.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			var done <-chan struct{}
			if sess.Running() {
				done = sess.Done()
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-done:
				if receipt := sess.State().Receipt; receipt != nil {
					printReceipt(con, receipt)
					return nil
				}
			case cmd, ok := <-con.commands:
				if !ok || cmd == "/quit" {
					return nil
				}
				if err := runCommand(gctx, con, flow, sess, cmd); err != nil {
					con.println(err.Error())
				}
			}
		}
	})
	err := g.Wait()
	if sess.Running() {
		_ = sess.Stop()
	}
	return err
}

func runCommand(ctx context.Context, con *console, flow *agent.FormFlow, sess *session.Session, cmd string) error {
	switch cmd {
	case "/schema":
		con.println(flow.Schema())
	case "/summary":
		con.println(flow.Summary(sess.Form()))
	case "/pause":
		return sess.Pause()
	case "/resume":
		return sess.Resume(ctx)
	case "/start":
		return sess.Start(ctx)
	case "/stop":
		return sess.Stop()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// runText drives the registration agent through an adk runner, one typed
// line per turn.
func runText(ctx context.Context, flow *agent.FormFlow, con *console) error {
	ctx = agent.WithStateKey(ctx, "console")
	conversations := agent.NewMemoryConversationStore(nil)
	transcripts := agent.NewMemoryTranscriptStore(agent.KeepSystemLastNTrimmer{N: 50})
	formAgent := agent.NewAgent(
		"RegistrationAssistant",
		"An assistant that registers hospital patients through conversation",
		flow,
		conversations,
		transcripts,
	)
	runner := adk.NewRunner(ctx, adk.RunnerConfig{Agent: formAgent})

	greeting, err := formAgent.Step(ctx, "")
	if err != nil {
		return err
	}
	con.println("Assistant: " + greeting.Message)

	for {
		var input string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-con.commands:
			if !ok || cmd == "/quit" {
				return nil
			}
			conv, err := conversations.Load(ctx)
			if err != nil {
				return err
			}
			switch cmd {
			case "/schema":
				con.println(flow.Schema())
			case "/summary":
				con.println(flow.Summary(conv.Form))
			default:
				con.println(fmt.Sprintf("unknown command %q", cmd))
			}
			continue
		case line, ok := <-con.utterances:
			if !ok {
				return nil
			}
			input = line
		}

		iter := runner.Run(ctx, []*schema.Message{schema.UserMessage(input)})
		for {
			event, ok := iter.Next()
			if !ok {
				break
			}
			if event.Err != nil {
				return event.Err
			}
			msg, err := event.Output.MessageOutput.GetMessage()
			if err != nil {
				return err
			}
			con.println("Assistant: " + msg.Content)
		}

		conv, err := conversations.Load(ctx)
		if err != nil {
			return err
		}
		if conv.State.Phase == types.PhaseConfirmed {
			if conv.State.Receipt != nil {
				printReceipt(con, conv.State.Receipt)
			}
			_ = transcripts.Clear(ctx)
			_ = conversations.Remove(ctx)
			return nil
		}
	}
}

func printReceipt(con *console, r *registry.Receipt) {
	con.println(fmt.Sprintf("Registered %s at %s: token %d, %s, about %d minutes", r.Patient, r.Hospital, r.Token, r.TimeRange, r.EstimatedWait))
}
