package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/solvyn/widgetcore/internal/config"
	"github.com/solvyn/widgetcore/internal/domain"
	"github.com/solvyn/widgetcore/internal/geo"
	"github.com/solvyn/widgetcore/internal/hostbridge"
	"github.com/solvyn/widgetcore/internal/logging"
	"github.com/solvyn/widgetcore/internal/runloop"
	"github.com/solvyn/widgetcore/internal/store"
	"github.com/solvyn/widgetcore/internal/widget"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the headless widget engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWidget(cmd.Context())
		},
	}
}

func runWidget(parent context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if logLevel == "" && cfg.Logging.Level != "" {
		log = logging.New(nil, cfg.Logging.Level)
	}
	if cfg.Logging.File != "" {
		log = logging.NewFile(cfg.Logging.File, cfg.Logging.Level)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.OpenSQLite(cfg.Store.Path, log)
	if err != nil {
		return err
	}
	defer st.Close()

	// The static bus plays the host page: it answers the handshake with the
	// configuration from the config file.
	widgetCfg := domain.Config{
		BackendURL: cfg.Widget.BackendURL,
		SocketURL:  cfg.Widget.SocketURL,
		TenantCode: cfg.Widget.TenantCode,
		HeaderText: cfg.Widget.HeaderText,
		Theme:      cfg.Widget.Theme,
		AutoOpen:   cfg.Widget.AutoOpen,
		TabsMode:   cfg.Widget.TabsMode,
	}
	bridge := hostbridge.New(
		hostbridge.NewStaticBus(widgetCfg, log),
		log,
		hostbridge.WithTimeout(time.Duration(cfg.Widget.HandshakeTimeoutSeconds)*time.Second),
	)

	loop := runloop.NewLoop(log)

	eng, err := widget.New(widget.Deps{
		Bridge:   bridge,
		Sched:    loop,
		Store:    st,
		Renderer: widget.NewLogRenderer(log),
		Geo:      geo.New(cfg.Geo.Endpoint, nil, log),
		PageURL:  cfg.Widget.PageURL,
		Log:      log,
	})
	if err != nil {
		return err
	}

	if err := eng.Start(ctx); err != nil {
		return err
	}
	defer eng.Close()

	loop.Run(ctx)
	return nil
}
