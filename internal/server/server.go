package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rohmanhakim/newsfeed/internal/newscache"
	"github.com/rohmanhakim/newsfeed/internal/theme"
	"github.com/rohmanhakim/newsfeed/internal/view"
	"github.com/rohmanhakim/newsfeed/pkg/timeutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/sync/singleflight"
)

/*
Responsibilities
- Serve the rendered feed as an HTML page and as JSON
- Keep a per-visitor theme in the session, falling back to the stored preference
- Coalesce concurrent loads so one refresh serves every waiting request
*/

// sessionThemeKey holds the visitor's theme override.
const sessionThemeKey = "theme"

const shutdownTimeout = 5 * time.Second

type Server struct {
	Router *chi.Mux
	Sess   *scs.SessionManager

	cache      *newscache.Cache
	fetch      newscache.FetchFunc
	now        timeutil.NowFunc
	preference *theme.Preference
	renderer   *view.Renderer
	logger     zerolog.Logger
	group      singleflight.Group
}

type ServerOptions struct {
	Cache      *newscache.Cache
	Fetch      newscache.FetchFunc
	Now        timeutil.NowFunc
	Preference *theme.Preference
	Renderer   *view.Renderer
	Sess       *scs.SessionManager
	Logger     zerolog.Logger
}

// NewSessionManager returns the cookie session settings the server expects.
func NewSessionManager() *scs.SessionManager {
	sess := scs.New()
	sess.Lifetime = 365 * 24 * time.Hour
	sess.Cookie.Name = "newsfeed_session"
	sess.Cookie.HttpOnly = true
	sess.Cookie.SameSite = http.SameSiteLaxMode
	sess.Cookie.Persist = true
	return sess
}

func New(opts ServerOptions) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sess == nil {
		opts.Sess = NewSessionManager()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	s := &Server{
		Router:     r,
		Sess:       opts.Sess,
		cache:      opts.Cache,
		fetch:      opts.Fetch,
		now:        opts.Now,
		preference: opts.Preference,
		renderer:   opts.Renderer,
		logger:     opts.Logger,
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("writing health check response")
		}
	})
	r.Get("/", s.handleHome)
	r.Get("/api/news", s.handleNews)
	r.Post("/theme", s.handleTheme)

	return s
}

// Handler wraps the router with request logging and session loading.
func (s *Server) Handler() http.Handler {
	h := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(s.Router)
	h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
	h = hlog.NewHandler(s.logger)(h)
	return s.Sess.LoadAndSave(h)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type loadResult struct {
	articles []newscache.Article
	err      error
}

// load runs GetNews once for every request that arrives while it is in flight.
// The shared call is detached from the first caller's cancellation.
func (s *Server) load(ctx context.Context) ([]newscache.Article, error) {
	v, _, _ := s.group.Do(newscache.CacheKey, func() (any, error) {
		articles, err := s.cache.GetNews(context.WithoutCancel(ctx), s.fetch, s.now)
		if err != nil {
			return loadResult{err: err}, nil
		}
		return loadResult{articles: articles}, nil
	})
	result := v.(loadResult)
	return result.articles, result.err
}

// currentTheme prefers the session override over the stored preference.
func (s *Server) currentTheme(r *http.Request) theme.Theme {
	if t, err := theme.Parse(s.Sess.GetString(r.Context(), sessionThemeKey)); err == nil {
		return t
	}
	if s.preference == nil {
		return theme.Default
	}
	return s.preference.Get()
}
