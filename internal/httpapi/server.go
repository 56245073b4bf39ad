// Package httpapi exposes the day-granular views over HTTP for screens
// that poll instead of shelling out: kitchen displays, reception
// dashboards. The API is read-only; every write still goes through the
// CLI so the store keeps a single writer.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/optipresta/optipresta/internal/contract"
	"github.com/optipresta/optipresta/internal/schedule"
	"github.com/optipresta/optipresta/internal/store"
)

type Server struct {
	store  store.Store
	logger *slog.Logger
}

func NewServer(st store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:  st,
		logger: logger.With(slog.String("component", "httpapi")),
	}
}

// Routes mounts the read-only view endpoints. Date-scoped views take the
// date as a query parameter in the stored French form, e.g.
// ?date=Lundi%2018%20Mars%202024.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/healthz", s.health)
	r.Get("/events", s.listEvents)
	r.Get("/events/{id}", s.getEvent)
	r.Get("/dates", s.listDates)
	r.Get("/planning", s.planning)
	r.Get("/journal", s.journal)
	r.Get("/cuisine", s.cuisine)
	r.Get("/restaurant", s.restaurant)
	r.Get("/housekeeping", s.housekeeping)
	r.Get("/salles", s.salles)
	r.Get("/weekly", s.weekly)

	return r
}

// ListenAndServe blocks until ctx is cancelled, then shuts the server
// down with a grace period.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type envelope struct {
	SchemaVersion string `json:"schema_version"`
	Data          any    `json:"data"`
}

type errorPayload struct {
	SchemaVersion string             `json:"schema_version"`
	Error         contract.ErrorBody `json:"error"`
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, data any) {
	render.JSON(w, r, envelope{SchemaVersion: contract.SchemaVersion, Data: data})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, code contract.ErrorCode, msg string) {
	s.logger.WarnContext(r.Context(), "request failed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("code", string(code)),
		slog.String("error", msg),
	)
	render.Status(r, status)
	render.JSON(w, r, errorPayload{
		SchemaVersion: contract.SchemaVersion,
		Error:         contract.ErrorBody{Code: code, Message: msg},
	})
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) ([]contract.Event, bool) {
	events, err := s.store.Load(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusServiceUnavailable, contract.ErrStoreUnavailable, err.Error())
		return nil, false
	}
	return events, true
}

// requireDate reads the ?date= parameter. Views keyed to a single day
// refuse to guess when it is missing.
func (s *Server) requireDate(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		s.fail(w, r, http.StatusBadRequest, contract.ErrInvalidUsage, "missing date parameter")
		return "", false
	}
	return date, true
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Load(r.Context()); err != nil {
		s.fail(w, r, http.StatusServiceUnavailable, contract.ErrStoreUnavailable, err.Error())
		return
	}
	s.respond(w, r, map[string]string{"status": "ok"})
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	events, ok := s.load(w, r)
	if !ok {
		return
	}
	s.respond(w, r, schedule.Dashboard(events))
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	events, ok := s.load(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	ev := store.Find(events, id)
	if ev == nil {
		s.fail(w, r, http.StatusNotFound, contract.ErrNotFound, "no event with id "+id)
		return
	}
	s.respond(w, r, ev)
}

func (s *Server) listDates(w http.ResponseWriter, r *http.Request) {
	events, ok := s.load(w, r)
	if !ok {
		return
	}
	s.respond(w, r, schedule.UniqueDates(events))
}

func (s *Server) planning(w http.ResponseWriter, r *http.Request) {
	events, ok := s.load(w, r)
	if !ok {
		return
	}
	days := schedule.FlattenDays(events)
	schedule.SortChronological(days)
	s.respond(w, r, schedule.GroupByWeek(days))
}

func (s *Server) journal(w http.ResponseWriter, r *http.Request) {
	events, ok := s.load(w, r)
	if !ok {
		return
	}
	date, ok := s.requireDate(w, r)
	if !ok {
		return
	}
	items := schedule.BuildTimeline(events, date)
	s.respond(w, r, schedule.GroupTimeline(items))
}

func (s *Server) cuisine(w http.ResponseWriter, r *http.Request) {
	events, ok := s.load(w, r)
	if !ok {
		return
	}
	date, ok := s.requireDate(w, r)
	if !ok {
		return
	}
	s.respond(w, r, schedule.MenusForDate(events, date))
}

func (s *Server) restaurant(w http.ResponseWriter, r *http.Request) {
	events, ok := s.load(w, r)
	if !ok {
		return
	}
	date, ok := s.requireDate(w, r)
	if !ok {
		return
	}
	s.respond(w, r, schedule.BreaksForDate(events, date))
}

func (s *Server) housekeeping(w http.ResponseWriter, r *http.Request) {
	events, ok := s.load(w, r)
	if !ok {
		return
	}
	date, ok := s.requireDate(w, r)
	if !ok {
		return
	}
	s.respond(w, r, schedule.AccommodationForDate(events, date))
}

func (s *Server) salles(w http.ResponseWriter, r *http.Request) {
	events, ok := s.load(w, r)
	if !ok {
		return
	}
	date, ok := s.requireDate(w, r)
	if !ok {
		return
	}
	s.respond(w, r, schedule.RoomsForDate(events, date))
}

func (s *Server) weekly(w http.ResponseWriter, r *http.Request) {
	events, ok := s.load(w, r)
	if !ok {
		return
	}
	s.respond(w, r, schedule.WeeklyHousing(events))
}
