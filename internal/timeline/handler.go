package timeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"nvr-timeline/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// defaultCanvasHeight is used when the client does not supply one.
const defaultCanvasHeight = 120.0

// dashSession is one operator tab: a navigator, its media bridge, the
// websocket watchers, and the background segment refresher.
type dashSession struct {
	id     string
	nav    *Navigator
	bridge *MediaBridge
	hub    *watchHub
	cancel context.CancelFunc
}

// Handler exposes the timeline navigator over HTTP using go-chi. Each browser
// tab opens its own session; sessions are independent navigators sharing one
// archive client.
type Handler struct {
	mu       sync.Mutex
	sessions map[string]*dashSession

	archive         ArchiveClient
	log             *slog.Logger
	metrics         *metrics.Metrics
	opts            Options
	refreshInterval time.Duration
}

// NewHandler returns a Handler creating navigators with the given archive and
// options. met may be nil to disable metric recording (e.g. in tests).
func NewHandler(archive ArchiveClient, log *slog.Logger, met *metrics.Metrics, opts Options, refreshInterval time.Duration) *Handler {
	return &Handler{
		sessions:        make(map[string]*dashSession),
		archive:         archive,
		log:             log,
		metrics:         met,
		opts:            opts,
		refreshInterval: refreshInterval,
	}
}

// Routes mounts all navigator endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{session_id}", func(r chi.Router) {
		r.Delete("/", h.CloseSession)
		r.Get("/render", h.Render)
		r.Get("/ws", h.Watch)
		r.Post("/click", h.Click)
		r.Post("/zoom", h.Zoom)
		r.Post("/pan", h.Pan)
		r.Post("/stop", h.Stop)
		r.Post("/channel", h.SelectChannel)
		r.Post("/date", h.SelectDate)
		r.Post("/media-events", h.MediaEvent)
		r.Post("/dismiss-error", h.DismissError)
	})
	r.Get("/channels/{channel}/dates", h.RecordedDates)
}

// SessionCount returns the number of open sessions. Used for metrics.
func (h *Handler) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *Handler) session(r *http.Request) *dashSession {
	id := chi.URLParam(r, "session_id")
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[id]
}

// StateUpdate is one websocket push: observable navigator state plus the
// pending media directive for the browser's video element.
type StateUpdate struct {
	Status Status         `json:"status"`
	Media  MediaDirective `json:"media"`
}

// CreateSession handles POST /sessions. Body: {"channel": "ch1", "date": "2026-08-23"}.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Channel Channel `json:"channel"`
		Date    string  `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Channel == "" || body.Date == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	hub := newWatchHub(h.log)
	s := &dashSession{id: uuid.NewString(), hub: hub}
	push := func() { hub.broadcast(StateUpdate{Status: s.nav.Status(), Media: s.bridge.Directive()}) }
	s.bridge = NewMediaBridge(h.archive.ClipURL, push)
	s.nav = NewNavigator(h.archive, s.bridge, h.log, h.metrics, h.opts)
	s.nav.OnChange(push)

	if err := s.nav.SelectDate(r.Context(), body.Date); err != nil {
		h.log.Debug("invalid date on session create", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := s.nav.SelectChannel(r.Context(), body.Channel); err != nil {
		h.log.Error("select channel failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.nav.RunRefresher(ctx, h.refreshInterval)

	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()

	h.log.Info("session created",
		slog.String("session_id", s.id),
		slog.String("channel", string(body.Channel)),
		slog.String("date", body.Date))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"session_id": s.id})
}

// CloseSession handles DELETE /sessions/{session_id}.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	s.nav.Stop()
	s.cancel()
	s.hub.close()
	h.log.Info("session closed", slog.String("session_id", id))
	w.WriteHeader(http.StatusOK)
}

// Render handles GET /sessions/{id}/render?width=&height= and returns the
// draw command list for the current state.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	width, err := strconv.ParseFloat(r.URL.Query().Get("width"), 64)
	if err != nil || width <= 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	height, err := strconv.ParseFloat(r.URL.Query().Get("height"), 64)
	if err != nil || height <= 0 {
		height = defaultCanvasHeight
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.nav.RenderFrame(width, height))
}

// Click handles POST /sessions/{id}/click. Body: {"x": 312.5, "width": 1280}.
func (h *Handler) Click(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var body struct {
		X     float64 `json:"x"`
		Width float64 `json:"width"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Width <= 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.nav.Click(body.X, body.Width)
	w.WriteHeader(http.StatusAccepted)
}

// Zoom handles POST /sessions/{id}/zoom. Body: {"direction": "in"|"out"}.
func (h *Handler) Zoom(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var body struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	switch body.Direction {
	case "in":
		s.nav.ZoomIn()
	case "out":
		s.nav.ZoomOut()
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.nav.Viewport())
}

// Pan handles POST /sessions/{id}/pan. Body: {"delta_hours": -1.5}.
func (h *Handler) Pan(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var body struct {
		DeltaHours float64 `json:"delta_hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.nav.PanBy(body.DeltaHours)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.nav.Viewport())
}

// Stop handles POST /sessions/{id}/stop.
func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.nav.Stop()
	w.WriteHeader(http.StatusOK)
}

// SelectChannel handles POST /sessions/{id}/channel. Body: {"channel": "ch2"}.
func (h *Handler) SelectChannel(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var body struct {
		Channel Channel `json:"channel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Channel == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := s.nav.SelectChannel(r.Context(), body.Channel); err != nil {
		h.log.Error("select channel failed",
			slog.String("session_id", s.id),
			slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SelectDate handles POST /sessions/{id}/date. Body: {"date": "2026-08-22"}.
func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Date == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := s.nav.SelectDate(r.Context(), body.Date); err != nil {
		h.log.Debug("invalid date", slog.String("date", body.Date), slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// MediaEvent handles POST /sessions/{id}/media-events: the browser reporting
// its video element's timeupdate/ended events back to the controller.
func (h *Handler) MediaEvent(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var ev MediaEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil || ev.Kind == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.nav.HandleMediaEvent(ev)
	w.WriteHeader(http.StatusAccepted)
}

// DismissError handles POST /sessions/{id}/dismiss-error.
func (h *Handler) DismissError(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.nav.DismissError()
	w.WriteHeader(http.StatusOK)
}

// RecordedDates handles GET /channels/{channel}/dates for the date picker.
func (h *Handler) RecordedDates(w http.ResponseWriter, r *http.Request) {
	channel := Channel(chi.URLParam(r, "channel"))
	if channel == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Any session's archive works; dates are per channel, not per session.
	dates, err := h.archive.ListRecordedDates(r.Context(), channel)
	if err != nil {
		h.log.Error("list recorded dates failed",
			slog.String("channel", string(channel)),
			slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dates)
}

// Watch handles GET /sessions/{id}/ws: upgrades to a websocket and pushes a
// StateUpdate after every observable change.
func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	first := StateUpdate{Status: s.nav.Status(), Media: s.bridge.Directive()}
	s.hub.serve(w, r, first)
}
