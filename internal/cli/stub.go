package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wesleyorama2/memberload/internal/portalstub"
)

func newStubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve a stand-in members portal",
		Long: `Serve a local stand-in for the members portal for smoke runs. Login and
logout accept the portal form fields; every other page answers 200.

With --check-credentials the stub only accepts the credentials of the
configured credentials file.`,
		Args: cobra.NoArgs,
		RunE: runStub,
	}

	cmd.Flags().String("addr", ":8089", "Address to listen on")
	cmd.Flags().Duration("latency", 0, "Delay added to every response")
	cmd.Flags().Bool("check-credentials", false, "Reject logins that do not match the credentials file")

	return cmd
}

func runStub(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	addr, _ := cmd.Flags().GetString("addr")
	latency, _ := cmd.Flags().GetDuration("latency")
	check, _ := cmd.Flags().GetBool("check-credentials")

	opts := []portalstub.Option{
		portalstub.WithLatency(latency),
		portalstub.WithLogger(logger),
	}
	if check {
		creds, err := cfg.CredentialSource().Load()
		if err != nil {
			return err
		}
		opts = append(opts, portalstub.WithCredentials(creds))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("portal stub listening",
		zap.String("addr", addr),
		zap.Duration("latency", latency),
		zap.Bool("checkCredentials", check),
	)
	start := time.Now()

	if err := portalstub.New(opts...).ListenAndServe(ctx, addr); err != nil {
		return err
	}
	logger.Info("portal stub stopped", zap.Duration("uptime", time.Since(start)))
	return nil
}
