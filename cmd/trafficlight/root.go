package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/anggasct/stepfsm"
	"github.com/anggasct/stepfsm/internal/logging"
	"github.com/anggasct/stepfsm/pkg/observers"
	"github.com/anggasct/stepfsm/visualization"
)

// newRootCmd builds the command. sleep is injected so tests run instantly.
func newRootCmd(sleep func(time.Duration)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trafficlight",
		Short: "Drive a traffic light state machine through its cycle",
		Long: `Runs a Green -> Yellow -> Red -> Green traffic light built on stepfsm.
Each state holds for its configured duration on entry. Defaults come from
TRAFFICLIGHT_* environment variables and can be overridden by flags.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd, cfg, sleep)
		},
	}

	cmd.Flags().Duration("green", 0, "how long Green stays on (default from TRAFFICLIGHT_GREEN or 3s)")
	cmd.Flags().Duration("yellow", 0, "how long Yellow stays on (default from TRAFFICLIGHT_YELLOW or 1s)")
	cmd.Flags().Duration("red", 0, "how long Red stays on (default from TRAFFICLIGHT_RED or 2s)")
	cmd.Flags().Int("cycles", 0, "number of full cycles (default from TRAFFICLIGHT_CYCLES or 1)")
	cmd.Flags().String("log-level", "", "debug, info, warn or error (default from TRAFFICLIGHT_LOG_LEVEL or warn)")
	cmd.Flags().Bool("dot", false, "print the machine as a Graphviz DOT graph and exit")
	cmd.Flags().Bool("metrics", false, "print Prometheus metrics after the run")

	return cmd
}

func applyFlags(cmd *cobra.Command, cfg *Config) {
	flags := cmd.Flags()
	if flags.Changed("green") {
		cfg.GreenHold, _ = flags.GetDuration("green")
	}
	if flags.Changed("yellow") {
		cfg.YellowHold, _ = flags.GetDuration("yellow")
	}
	if flags.Changed("red") {
		cfg.RedHold, _ = flags.GetDuration("red")
	}
	if flags.Changed("cycles") {
		cfg.Cycles, _ = flags.GetInt("cycles")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
}

func run(cmd *cobra.Command, cfg Config, sleep func(time.Duration)) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.New(cmd.ErrOrStderr(), level)

	reg := prometheus.NewRegistry()
	metrics, err := observers.NewMetricsObserver[Light](reg, "trafficlight")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tl, err := NewTrafficLight(cfg, out, sleep,
		stepfsm.WithName[Light]("trafficlight"),
		stepfsm.WithLogger[Light](logger),
		stepfsm.WithObserver[Light](observers.NewLoggingObserver[Light](logger, slog.LevelInfo)),
		stepfsm.WithObserver[Light](metrics),
	)
	if err != nil {
		return err
	}

	if dot, _ := cmd.Flags().GetBool("dot"); dot {
		return visualization.NewDOTGenerator[Light](tl.Machine()).Write(out)
	}

	if err := tl.Run(cfg.Cycles); err != nil {
		return fmt.Errorf("traffic light: %w", err)
	}

	if show, _ := cmd.Flags().GetBool("metrics"); show {
		return writeMetrics(out, reg)
	}
	return nil
}

func writeMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
