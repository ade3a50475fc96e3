package cli

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wesleyorama2/memberload/internal/events"
	mhttp "github.com/wesleyorama2/memberload/internal/http"
	"github.com/wesleyorama2/memberload/internal/output"
	"github.com/wesleyorama2/memberload/internal/scenario"
	"github.com/wesleyorama2/memberload/internal/timing"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Run one member session",
		Long: `Run a single simulated member against the portal: log in, perform
weighted actions with a random wait between them, then log out. Every timed
action is printed as a success or failure event.

Failed actions are reported, not fatal: the command exits 0 once the session
has logged out.

  memberload session --host http://localhost:8089 --iterations 5 --no-wait`,
		Args: cobra.NoArgs,
		RunE: runSession,
	}

	cmd.Flags().String("host", "", "Portal base URL (overrides the config file)")
	cmd.Flags().IntP("iterations", "n", 10, "Number of actions between login and logout")
	cmd.Flags().Bool("no-wait", false, "Skip the wait time between actions")
	cmd.Flags().Int64("seed", 0, "Random seed for action selection (0 = time based)")
	cmd.Flags().StringP("format", "f", string(output.FormatText), "Event output format (text, json, yaml)")

	return cmd
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	host, _ := cmd.Flags().GetString("host")
	iterations, _ := cmd.Flags().GetInt("iterations")
	noWait, _ := cmd.Flags().GetBool("no-wait")
	seed, _ := cmd.Flags().GetInt64("seed")
	format, _ := cmd.Flags().GetString("format")

	if host != "" {
		cfg.Host = host
		if errs := cfg.Validate(); len(errs) > 0 {
			return errs
		}
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	bus := events.NewBus()
	reporter, err := output.NewReporter(output.Format(format), cmd.OutOrStdout(), noColor(cmd))
	if err != nil {
		return err
	}
	output.Attach(bus, reporter)

	var recorder events.Recorder
	recorder.Attach(bus)

	clientOpts := []mhttp.ClientOption{mhttp.WithBaseURL(cfg.Host)}
	if cfg.ReportRequests {
		clientOpts = append(clientOpts, mhttp.WithRequestEvents(bus))
	}

	session := scenario.NewSession(
		mhttp.NewClient(clientOpts...),
		cfg.CredentialSource(),
		timing.NewTimer(bus),
		scenario.WithLogger(logger),
		scenario.WithActions(cfg.Actions()),
	)

	rng := rand.New(rand.NewSource(seed))
	picker, err := scenario.NewPicker(session.Actions(), rng)
	if err != nil {
		return err
	}

	opts := scenario.DriveOptions{Iterations: iterations}
	if !noWait {
		user := cfg.User()
		opts.Wait = func() time.Duration { return user.WaitTime(rng) }
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("session starting",
		zap.String("session", session.ID),
		zap.String("host", cfg.Host),
		zap.Int("iterations", iterations),
		zap.Int64("seed", seed),
	)

	err = scenario.Drive(ctx, session, picker, opts)

	logger.Info("session finished",
		zap.String("session", session.ID),
		zap.Int("successes", len(recorder.Successes())),
		zap.Int("failures", len(recorder.Failures())),
	)

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
