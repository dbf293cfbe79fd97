package inspect

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notify"
)

// EntryView is the JSON form of a held entry.
type EntryView struct {
	ID       int64     `json:"id"`
	Phase    string    `json:"phase"`
	Title    string    `json:"title,omitempty"`
	Text     string    `json:"text,omitempty"`
	Tag      string    `json:"tag,omitempty"`
	Priority int       `json:"priority"`
	Targets  string    `json:"targets"`
	Sent     []string  `json:"sent,omitempty"`
	Ignored  []string  `json:"ignored,omitempty"`
	Effects  string    `json:"effects,omitempty"`
	When     time.Time `json:"when"`
}

func newEntryView(e *notify.Entry, phase notify.Phase) EntryView {
	v := EntryView{
		ID:       e.ID(),
		Phase:    phase.String(),
		Title:    e.Title,
		Text:     e.Text,
		Tag:      e.Tag,
		Priority: e.Priority,
		Targets:  e.Targets().String(),
		When:     e.When,
	}
	for _, t := range e.Targets().Bits() {
		if e.IsSentToTarget(t) {
			v.Sent = append(v.Sent, t.String())
		}
		if e.IsIgnored(t) {
			v.Ignored = append(v.Ignored, t.String())
		}
		if e.HasEffect(t) {
			v.Effects = t.String()
		}
	}
	return v
}

// EntriesResponse is the body of GET /entries.
type EntriesResponse struct {
	Enabled bool        `json:"enabled"`
	Count   int         `json:"count"`
	Entries []EntryView `json:"entries"`
}

type routerConfig struct {
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	origins  []string
}

// RouterOption configures NewRouter.
type RouterOption func(*routerConfig)

// WithRouterLogger sets the logger for encoding failures.
func WithRouterLogger(l *slog.Logger) RouterOption {
	return func(c *routerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithGatherer serves /metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) RouterOption {
	return func(c *routerConfig) {
		if g != nil {
			c.gatherer = g
		}
	}
}

// WithAllowedOrigins enables CORS for read-only requests from origins.
func WithAllowedOrigins(origins ...string) RouterOption {
	return func(c *routerConfig) {
		c.origins = append(c.origins, origins...)
	}
}

// NewRouter mounts the inspection endpoints for d:
//
//	GET /entries?phase=pending|active&tag=...&targets=remote,local
//	GET /entries/{id}
//	GET /metrics
//	GET /healthz
func NewRouter(d *notify.Delegater, opts ...RouterOption) http.Handler {
	cfg := &routerConfig{
		logger:   slog.Default(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.Recoverer)
	if len(cfg.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/entries", func(w http.ResponseWriter, r *http.Request) {
		q, err := parseQuery(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		resp := EntriesResponse{Enabled: d.Enabled(), Entries: []EntryView{}}
		for _, phase := range phasesOf(q.Phase) {
			q.Phase = phase
			for _, e := range d.Entries(q) {
				resp.Entries = append(resp.Entries, newEntryView(e, phase))
			}
		}
		resp.Count = len(resp.Entries)
		writeJSON(w, r, cfg.logger, http.StatusOK, resp)
	})

	r.Get("/entries/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid entry id")
			return
		}
		e, phase, ok := d.Lookup(id)
		if !ok {
			writeJSONError(w, http.StatusNotFound, "entry not found")
			return
		}
		writeJSON(w, r, cfg.logger, http.StatusOK, newEntryView(e, phase))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", HealthCheckHandler(cfg.logger, func() error {
		if err := d.Err(); err != nil {
			return errors.Join(ErrNotRunning, err)
		}
		return nil
	}))

	return r
}

func parseQuery(r *http.Request) (notify.Query, error) {
	var q notify.Query
	v := r.URL.Query()
	q.Tag = v.Get("tag")
	switch v.Get("phase") {
	case "", "any":
	case "pending":
		q.Phase = notify.PhasePending
	case "active":
		q.Phase = notify.PhaseActive
	default:
		return q, ErrInvalidPhase
	}
	if raw := v.Get("targets"); raw != "" {
		t, err := notify.ParseTargets(strings.Split(raw, ","))
		if err != nil {
			return q, err
		}
		q.Targets = t
	}
	return q, nil
}

func phasesOf(p notify.Phase) []notify.Phase {
	if p == notify.PhaseAny {
		return []notify.Phase{notify.PhasePending, notify.PhaseActive}
	}
	return []notify.Phase{p}
}

func writeJSON(w http.ResponseWriter, r *http.Request, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorContext(r.Context(), "failed to encode response", logger.Error(err))
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
