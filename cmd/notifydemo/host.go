package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/notifykit/internal/console"
	"github.com/dmitrymomot/notifykit/pkg/notify"
)

// host is a Delegater wired to console renderers.
type host struct {
	d        *notify.Delegater
	board    *console.Board
	overlay  *console.Overlay
	registry *prometheus.Registry
	printer  *console.Printer
}

func newHost(cfg notify.Config, log *slog.Logger, out io.Writer, canDraw bool) *host {
	p := console.NewPrinter(out)
	h := &host{
		board:    console.NewBoard(p, "board"),
		overlay:  console.NewOverlay(p, canDraw),
		registry: prometheus.NewRegistry(),
		printer:  p,
	}
	h.d = notify.New(
		notify.WithConfig(cfg),
		notify.WithLogger(log),
		notify.WithRegisterer(h.registry),
		notify.WithStatusBar(console.NewStatusBar(p)),
		notify.WithBoard(h.board),
		notify.WithOverlay(h.overlay),
		notify.WithEffects(console.NewEffects(p)),
	)
	return h
}

// start initializes the delegater and echoes listener callbacks.
func (h *host) start(ctx context.Context, components notify.Target) error {
	if err := h.d.Init(ctx, components); err != nil {
		return err
	}
	return h.d.AddListener(&notify.ListenerFuncs{
		Arrival: func(e *notify.Entry) { h.printer.Printf("listener", "arrival #%d", e.ID()) },
		Update:  func(e *notify.Entry) { h.printer.Printf("listener", "update #%d", e.ID()) },
		Cancel:  func(e *notify.Entry) { h.printer.Printf("listener", "cancel #%d", e.ID()) },
	})
}

func (h *host) summary() {
	for _, e := range h.d.Entries(notify.Query{}) {
		h.printer.Printf("held", "#%d %s targets=%s", e.ID(), e.Title, e.Targets())
	}
	h.printer.Printf("held", "%d entries", h.d.Count())
}
