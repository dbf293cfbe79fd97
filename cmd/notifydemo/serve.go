package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/notifykit/internal/inspect"
	"github.com/dmitrymomot/notifykit/internal/scenario"
	"github.com/dmitrymomot/notifykit/pkg/notify"
)

func newServeCmd(g *globals) *cobra.Command {
	var (
		addr    string
		preload string
		canDraw bool
		origins []string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Keep a notification session alive behind the inspection endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var sc *scenario.Scenario
			components := notify.TargetNone
			if preload != "" {
				var err error
				if sc, err = scenario.Load(preload); err != nil {
					return err
				}
				canDraw = canDraw || sc.CanDraw
				if len(sc.Components) > 0 {
					if components, err = sc.ComponentMask(); err != nil {
						return err
					}
				}
			}

			h := newHost(g.cfg, g.log, cmd.OutOrStdout(), canDraw)
			if err := h.start(ctx, components); err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = h.d.Close(closeCtx)
			}()

			if sc != nil {
				runner := scenario.NewRunner(h.d,
					scenario.WithLogger(g.log),
					scenario.WithOverlaySwitch(h.overlay),
				)
				if err := runner.Run(ctx, sc); err != nil {
					return err
				}
			}

			srv := inspect.NewServer(inspect.WithAddr(addr), inspect.WithServerLogger(g.log))
			return srv.Run(ctx, inspect.NewRouter(h.d,
				inspect.WithGatherer(h.registry),
				inspect.WithRouterLogger(g.log),
				inspect.WithAllowedOrigins(origins...),
			))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":9090", "Listen address")
	cmd.Flags().StringVar(&preload, "scenario", "", "Play this scenario file before serving")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "Allow browser reads from these origins")
	cmd.Flags().BoolVar(&canDraw, "can-draw", false, "Grant the overlay drawing permission")
	return cmd
}
