package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/notifykit/internal/inspect"
	"github.com/dmitrymomot/notifykit/internal/scenario"
)

func newRunCmd(g *globals) *cobra.Command {
	var (
		metricsAddr string
		hold        bool
	)
	cmd := &cobra.Command{
		Use:     "run <scenario.yaml|toml|json>",
		Short:   "Play a scenario file and print what every renderer shows",
		Example: "  notifydemo run testdata/chat.yaml\n  notifydemo run chat.toml --metrics-addr :9090 --hold",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			return runScenario(cmd.Context(), g, cmd, sc, metricsAddr, hold)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /entries, /metrics and /healthz on this address while running")
	cmd.Flags().BoolVar(&hold, "hold", false, "Keep serving after the scenario ends until interrupted")
	return cmd
}

func runScenario(ctx context.Context, g *globals, cmd *cobra.Command, sc *scenario.Scenario, metricsAddr string, hold bool) error {
	components, err := sc.ComponentMask()
	if err != nil {
		return err
	}
	h := newHost(g.cfg, g.log, cmd.OutOrStdout(), sc.CanDraw)
	if err := h.start(ctx, components); err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.d.Close(closeCtx)
	}()

	runner := scenario.NewRunner(h.d,
		scenario.WithLogger(g.log),
		scenario.WithOverlaySwitch(h.overlay),
	)

	if metricsAddr == "" {
		if err := runner.Run(ctx, sc); err != nil {
			return err
		}
		h.summary()
		return nil
	}

	srvCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	srv := inspect.NewServer(inspect.WithAddr(metricsAddr), inspect.WithServerLogger(g.log))

	eg, egCtx := errgroup.WithContext(srvCtx)
	eg.Go(func() error {
		return srv.Run(egCtx, inspect.NewRouter(h.d,
			inspect.WithGatherer(h.registry),
			inspect.WithRouterLogger(g.log),
		))
	})
	eg.Go(func() error {
		if err := runner.Run(egCtx, sc); err != nil {
			return err
		}
		h.summary()
		if !hold {
			stopServer()
		}
		return nil
	})
	return eg.Wait()
}
