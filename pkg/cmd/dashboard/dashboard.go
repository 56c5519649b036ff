package dashboard

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"f1trackrenderer/log"
	"f1trackrenderer/pkg/cmd/common"
	"f1trackrenderer/pkg/config"
	"f1trackrenderer/pkg/dashboard"
	"f1trackrenderer/pkg/metrics"
	"f1trackrenderer/pkg/webserver"
)

var dashboardCfg config.Dashboard

func NewDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "starts the interactive web dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&dashboardCfg.Addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().DurationVar(&dashboardCfg.FrameDelay, "frame-delay", 50*time.Millisecond,
		"delay between streamed frames")
	cmd.Flags().Float64Var(&dashboardCfg.PlotWidth, "plot-width", config.DefaultPlotWidth,
		"width each driver trace is rescaled to")
	cmd.Flags().Float64Var(&dashboardCfg.PlotHeight, "plot-height", config.DefaultPlotHeight,
		"height each driver trace is rescaled to")
	cmd.Flags().StringVar(&dashboardCfg.ResourcesDir, "resources-dir", "./resources",
		"directory served below /resources/")
	cmd.Flags().DurationVar(&dashboardCfg.SessionTTL, "session-ttl", dashboard.DefaultSessionTTL,
		"idle time after which a browser session and its loaded data are dropped")
	return cmd
}

func startServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.Default()
	gw, store, err := common.OpenGateway()
	if err != nil {
		return err
	}
	defer store.Close()

	m := webserver.NewManager(dashboardCfg.ResourcesDir, logger)
	m.Router().Handle("/metrics", metrics.Default().Handler())
	dashboard.New(gw, dashboard.Options{
		FrameDelay: dashboardCfg.FrameDelay,
		PlotWidth:  dashboardCfg.PlotWidth,
		PlotHeight: dashboardCfg.PlotHeight,
		SessionTTL: dashboardCfg.SessionTTL,
	}, dashboard.WithLogger(logger)).Register(m.Router())

	for _, r := range m.Routes() {
		logger.Debug("route", log.String("route", r))
	}
	return m.Serve(ctx, dashboardCfg.Addr)
}
