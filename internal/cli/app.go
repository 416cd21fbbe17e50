package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rohmanhakim/newsfeed/internal/config"
	"github.com/rohmanhakim/newsfeed/internal/fetcher"
	"github.com/rohmanhakim/newsfeed/internal/metadata"
	"github.com/rohmanhakim/newsfeed/internal/newscache"
	"github.com/rohmanhakim/newsfeed/internal/store"
	"github.com/rohmanhakim/newsfeed/internal/theme"
	"github.com/rohmanhakim/newsfeed/internal/view"
	"github.com/rohmanhakim/newsfeed/pkg/timeutil"
	"github.com/rs/zerolog"
)

// app holds the components every command shares, built from one Config.
type app struct {
	cfg        config.Config
	logger     zerolog.Logger
	recorder   *metadata.Recorder
	store      store.ClosableStore
	cache      *newscache.Cache
	fetch      newscache.FetchFunc
	preference *theme.Preference
	renderer   *view.Renderer
	now        timeutil.NowFunc
}

func newApp(cfg config.Config, logOut io.Writer, now timeutil.NowFunc) (*app, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: logOut, TimeFormat: time.Kitchen}).
		Level(cfg.LogLevel()).
		With().
		Timestamp().
		Logger()
	recorder := metadata.NewRecorder(logger)

	s, err := store.Open(cfg.StoreBackend(), cfg.StoreDir(), recorder)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.StoreBackend(), err)
	}

	feed := fetcher.NewFeedFetcher(recorder, cfg.Timeout())
	fetch := feed.FetchFunc(fetcher.NewFetchParam(cfg.EndpointURL(), cfg.UserAgent()))

	return &app{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		store:    s,
		cache: newscache.New(s,
			newscache.WithFreshnessWindow(cfg.FreshnessWindow()),
			newscache.WithServeStaleOnError(cfg.ServeStaleOnError()),
			newscache.WithMetadataSink(recorder),
		),
		fetch:      fetch,
		preference: theme.NewPreference(s),
		renderer:   view.NewRenderer(recorder),
		now:        now,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("closing store")
	}
}

// showFeed loads the articles and renders them in format.
func (a *app) showFeed(ctx context.Context, w io.Writer, format view.Format, forceRefresh bool) error {
	load := a.cache.GetNews
	if forceRefresh {
		load = a.cache.Refresh
	}

	articles, cacheErr := load(ctx, a.fetch, a.now)
	var loadErr error
	if cacheErr != nil {
		loadErr = cacheErr
	}

	page := a.renderer.BuildPage(articles, loadErr, a.preference.Get(), a.now())
	if renderErr := a.renderer.Render(w, format, page); renderErr != nil {
		return renderErr
	}

	switch page.Outcome {
	case newscache.OutcomeFetchFailed, newscache.OutcomeFormatError:
		return fmt.Errorf("%w: %s", ErrFeedUnavailable, loadErr)
	}
	return nil
}
