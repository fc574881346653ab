package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/daniacca/epidyn/internal/epidemic"
	"github.com/daniacca/epidyn/internal/epidemic/notifiers"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("epidyn-sim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sc, err := loadSimConfig(fs, args, lookupEnv)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	logger := NewLoggerTo(stderr, sc.LogLevel)

	cfg, err := loadModelConfig(sc)
	if err != nil {
		fmt.Fprintf(stderr, "error loading config: %v\n", err)
		return 1
	}

	if sc.PrintConfig {
		out, err := epidemic.MarshalConfigYAML(cfg)
		if err != nil {
			fmt.Fprintf(stderr, "error encoding config: %v\n", err)
			return 1
		}
		_, _ = stdout.Write(out)
		return 0
	}

	model, err := epidemic.NewModel(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error creating model: %v\n", err)
		return 1
	}
	model.SetLogger(logger)

	mgr := epidemic.NewNotificationManagerWithLogger(logger)
	var notifierIDs []string
	var srv *http.Server
	if sc.StreamAddr != "" {
		ws := notifiers.NewWebSocketNotifier("stream")
		if err := mgr.RegisterNotifier(ws); err != nil {
			fmt.Fprintf(stderr, "error registering stream: %v\n", err)
			return 1
		}
		notifierIDs = append(notifierIDs, ws.ID())
		srv = startStream(sc.StreamAddr, ws, logger)
	}
	if sc.WebhookURL != "" {
		wh := notifiers.NewWebhookNotifier("webhook", sc.WebhookURL)
		if err := mgr.RegisterNotifier(wh); err != nil {
			fmt.Fprintf(stderr, "error registering webhook: %v\n", err)
			return 1
		}
		notifierIDs = append(notifierIDs, wh.ID())
	}
	if len(notifierIDs) > 0 {
		model.SetNotificationManager(mgr, notifierIDs...)
	}

	logger.Infof("run started: run_id=%s lattice=%dx%d schedule=%s steps=%d",
		model.ID(), cfg.Height, cfg.Width, model.Discipline(), sc.Steps)
	runSteps(model, sc.Steps, sc.Interval)

	// drain pending events before the stream goes away
	if err := mgr.Close(); err != nil {
		logger.Warnf("closing notifiers: %v", err)
	}
	if srv != nil {
		stopStream(srv, logger)
	}

	printSummary(stdout, model, sc.PrintSeries)
	return 0
}

func runSteps(model *epidemic.Model, steps int, interval time.Duration) {
	if interval <= 0 {
		model.RunSteps(steps)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range steps {
		model.Step()
		<-ticker.C
	}
}

func printSummary(w io.Writer, model *epidemic.Model, series bool) {
	rows := model.Series()
	s := epidemic.Summarize(rows)

	fmt.Fprintf(w, "Simulation finished (run=%s, schedule=%s, steps=%d)\n", model.ID(), model.Discipline(), s.Steps)
	fmt.Fprintf(w, "  peak infectious: %.4f at step %d\n", s.PeakInfectious, s.PeakStep)
	fmt.Fprintf(w, "  final infectious: %.4f\n", s.FinalInfectious)
	fmt.Fprintf(w, "  final removed: %.4f\n", s.FinalRemoved)
	fmt.Fprintf(w, "  attack rate: %.4f\n", s.AttackRate)
	fmt.Fprintf(w, "  mean exposed: %.4f\n", s.MeanExposed)

	if !series {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "step\tsusceptible\tinfectious\tremoved\texposed")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%.4f\t%.4f\t%.4f\t%.4f\n", r.Step, r.Susceptible, r.Infectious, r.Removed, r.Exposed)
	}
	tw.Flush()
}
