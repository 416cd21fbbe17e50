package server

import (
	"net/http"

	"github.com/rohmanhakim/newsfeed/internal/newscache"
	"github.com/rohmanhakim/newsfeed/internal/theme"
	"github.com/rohmanhakim/newsfeed/internal/view"
	"github.com/rs/zerolog/hlog"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	page := s.buildPage(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, view.FormatHTML, page); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("rendering home page")
	}
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	page := s.buildPage(r)
	w.Header().Set("Content-Type", "application/json")
	switch page.Outcome {
	case newscache.OutcomeFetchFailed, newscache.OutcomeFormatError:
		w.WriteHeader(http.StatusBadGateway)
	}
	if err := s.renderer.Render(w, view.FormatJSON, page); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("rendering news json")
	}
}

// handleTheme sets the visitor's theme from the "theme" form value, or flips it when absent.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	next := s.currentTheme(r).Opposite()
	if requested := r.FormValue("theme"); requested != "" {
		parsed, err := theme.Parse(requested)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		next = parsed
	}

	s.Sess.Put(r.Context(), sessionThemeKey, string(next))
	hlog.FromRequest(r).Debug().Str("theme", string(next)).Msg("theme changed")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) buildPage(r *http.Request) view.Page {
	articles, err := s.load(r.Context())
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("loading news")
	}
	return s.renderer.BuildPage(articles, err, s.currentTheme(r), s.now())
}
