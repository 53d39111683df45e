// Package web serves the reservation wizard as server rendered pages. Each
// POST applies one wizard action to the session's state and redirects back
// to GET /.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/example/bistrobook/internal/session"
	"github.com/example/bistrobook/internal/slots"
	"github.com/example/bistrobook/internal/wizard"
)

//go:embed templates/*.html static/*
var fs embed.FS

type Server struct {
	Sessions session.Store
	Service  wizard.Service
	Cookies  *Cookies

	// LandingURL is where "Home" leaves the wizard for.
	LandingURL string
	Log        *slog.Logger
}

var stepTemplates = map[wizard.Step]string{
	wizard.StepDate:      "templates/date.html",
	wizard.StepGuests:    "templates/guests.html",
	wizard.StepTable:     "templates/table.html",
	wizard.StepTime:      "templates/time.html",
	wizard.StepContact:   "templates/contact.html",
	wizard.StepPreview:   "templates/preview.html",
	wizard.StepConfirmed: "templates/confirmed.html",
}

type stepLink struct {
	Number  int
	Name    string
	Done    bool
	Current bool
}

type tmplData struct {
	Title string
	Steps []stepLink

	State  wizard.State
	Alert  string
	Guests []int
	Slots  []slots.TimeSlot
	// AllBooked replaces the slot picker with NoTimes.
	AllBooked bool
	NoTimes   string
	Summary   wizard.Summary
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.FileServer(http.FS(fs)))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("GET /{$}", s.handleWizard)
	mux.HandleFunc("GET /home", s.handleHome)

	mux.HandleFunc("POST /date", s.action(func(r *http.Request, wz *wizard.Wizard) error {
		if err := wz.SetDate(r.FormValue("date")); err != nil {
			return err
		}
		return s.next(r.Context(), wz)
	}))
	mux.HandleFunc("POST /guests", s.action(func(r *http.Request, wz *wizard.Wizard) error {
		n, _ := strconv.Atoi(r.FormValue("guests"))
		if err := wz.SetGuestCount(n); err != nil {
			return err
		}
		return s.next(r.Context(), wz)
	}))
	mux.HandleFunc("POST /tables/{id}", s.action(func(r *http.Request, wz *wizard.Wizard) error {
		id, _ := strconv.Atoi(r.PathValue("id"))
		eff, err := wz.SelectTable(id)
		if err != nil {
			return err
		}
		s.perform(r.Context(), wz, eff)
		if wz.State().Error != "" {
			// stay on the table list so the guest can retry
			return nil
		}
		return s.next(r.Context(), wz)
	}))
	mux.HandleFunc("POST /time", s.action(func(r *http.Request, wz *wizard.Wizard) error {
		if err := wz.SetStartTime(r.FormValue("time")); err != nil {
			return err
		}
		return s.next(r.Context(), wz)
	}))
	mux.HandleFunc("POST /contact", s.action(func(r *http.Request, wz *wizard.Wizard) error {
		err := wz.SetContact(wizard.Contact{
			FirstName:   r.FormValue("first_name"),
			LastName:    r.FormValue("last_name"),
			PhoneNumber: r.FormValue("phone_number"),
			Email:       r.FormValue("email"),
		})
		if err != nil {
			return err
		}
		return s.next(r.Context(), wz)
	}))
	mux.HandleFunc("POST /confirm", s.action(func(r *http.Request, wz *wizard.Wizard) error {
		eff, err := wz.Confirm()
		if err != nil {
			return err
		}
		s.perform(r.Context(), wz, eff)
		return nil
	}))
	mux.HandleFunc("POST /back", s.action(func(r *http.Request, wz *wizard.Wizard) error {
		return wz.Back()
	}))
	mux.HandleFunc("POST /new", s.action(func(r *http.Request, wz *wizard.Wizard) error {
		wz.Reset()
		return nil
	}))

	return s.logging(mux)
}

func (s *Server) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func (s *Server) next(ctx context.Context, wz *wizard.Wizard) error {
	eff, err := wz.Next()
	if err != nil {
		return err
	}
	s.perform(ctx, wz, eff)
	return nil
}

func (s *Server) perform(ctx context.Context, wz *wizard.Wizard, eff wizard.Effect) {
	if eff == nil {
		return
	}
	o := wizard.Perform(ctx, s.Service, eff)
	if o.Err != nil {
		s.logger().Warn("reservation api call failed", "call", eff.String(), "err", o.Err)
	}
	wz.Apply(o)
}

// load returns the wizard for r's session, starting a new one when the cookie
// is missing or the session has expired.
func (s *Server) load(r *http.Request) (string, *wizard.Wizard, error) {
	if id, ok := s.Cookies.ID(r); ok {
		st, err := s.Sessions.Load(r.Context(), id)
		if err == nil {
			return id, wizard.Restore(st), nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return "", nil, err
		}
	}
	return session.NewID(), wizard.New(), nil
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, id string, wz *wizard.Wizard) error {
	if err := s.Sessions.Save(r.Context(), id, wz.State()); err != nil {
		return err
	}
	return s.Cookies.Set(w, r, id)
}

func (s *Server) handleWizard(w http.ResponseWriter, r *http.Request) {
	id, wz, err := s.load(r)
	if err != nil {
		s.fail(w, "load session", err)
		return
	}
	if err := s.save(w, r, id, wz); err != nil {
		s.fail(w, "save session", err)
		return
	}
	s.page(w, http.StatusOK, wz.State(), "")
}

// action wraps one wizard transition. Validation failures re-render the
// current step with the alert; everything else redirects to GET /.
func (s *Server) action(fn func(r *http.Request, wz *wizard.Wizard) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id, wz, err := s.load(r)
		if err != nil {
			s.fail(w, "load session", err)
			return
		}

		err = fn(r, wz)
		var verr *wizard.ValidationError
		switch {
		case errors.As(err, &verr):
			if err := s.save(w, r, id, wz); err != nil {
				s.fail(w, "save session", err)
				return
			}
			s.page(w, http.StatusUnprocessableEntity, wz.State(), verr.Message)
			return
		case errors.Is(err, wizard.ErrInvalidTransition):
			s.logger().Debug("ignored stale wizard action", "path", r.URL.Path, "err", err)
		case err != nil:
			s.fail(w, "wizard action", err)
			return
		}

		if err := s.save(w, r, id, wz); err != nil {
			s.fail(w, "save session", err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// handleHome leaves the wizard for the landing page and forgets the session.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if id, ok := s.Cookies.ID(r); ok {
		if err := s.Sessions.Delete(r.Context(), id); err != nil {
			s.logger().Warn("delete session", "err", err)
		}
	}
	s.Cookies.Clear(w)
	http.Redirect(w, r, s.LandingURL, http.StatusFound)
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	s.logger().Error(what, "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) page(w http.ResponseWriter, status int, st wizard.State, alert string) {
	data := tmplData{
		Title: st.Step.String(),
		Steps: progress(st.Step),
		State: st,
		Alert: alert,
	}
	switch st.Step {
	case wizard.StepGuests:
		for n := 1; n <= wizard.MaxGuests; n++ {
			data.Guests = append(data.Guests, n)
		}
	case wizard.StepTime:
		data.Slots = st.Slots()
		if slots.AllBooked(data.Slots) {
			data.AllBooked = true
			data.NoTimes = wizard.MsgNoTimes
		}
	case wizard.StepPreview, wizard.StepConfirmed:
		data.Summary = st.Summary()
	}
	s.render(w, status, stepTemplates[st.Step], data)
}

func progress(cur wizard.Step) []stepLink {
	out := make([]stepLink, 0, int(wizard.StepConfirmed))
	for st := wizard.StepDate; st <= wizard.StepConfirmed; st++ {
		out = append(out, stepLink{Number: int(st), Name: st.String(), Done: st < cur, Current: st == cur})
	}
	return out
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data tmplData) {
	t, err := template.ParseFS(fs,
		"templates/base.html",
		name,
	)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		s.logger().Error("render", "template", name, "err", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger().Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "dur", time.Since(start))
	})
}

func Start(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info(fmt.Sprintf("listening on %s", addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
