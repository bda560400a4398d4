package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solvyn/widgetcore/internal/config"
	"github.com/solvyn/widgetcore/internal/stub"
)

func newStubCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stub",
		Short: "Run the stub development backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return stub.NewServer(cfg.Stub, log).Run(ctx)
		},
	}
}
