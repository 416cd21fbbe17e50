package cmd_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	cmd "github.com/rohmanhakim/newsfeed/internal/cli"
	"github.com/rohmanhakim/newsfeed/internal/config"
	"github.com/rohmanhakim/newsfeed/internal/newscache"
	"github.com/rohmanhakim/newsfeed/internal/store"
	"github.com/rohmanhakim/newsfeed/internal/theme"
	"github.com/rohmanhakim/newsfeed/internal/view"
	"github.com/rohmanhakim/newsfeed/pkg/timeutil"
)

const feedPayload = `[
	{"Title":"First","Summary":"<p>Hello <b>world</b></p>","PubDate":"2026-10-17T08:00:00Z","Link":"https://example.org/1","feed":"Example"},
	{"Title":"Second"}
]`

var fixedNow = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

// resetCLI clears flag state and isolates the command from the process environment.
func resetCLI(t *testing.T) {
	t.Helper()
	cmd.ResetFlags()
	cmd.SetEnvironForTest(map[string]string{})
	cmd.SetNowForTest(timeutil.FixedClock(fixedNow))
	t.Cleanup(cmd.ResetFlags)
}

// feedServer serves payload with status and counts requests.
func feedServer(t *testing.T, status int, payload string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := cmd.ExecuteWithArgs(context.Background(), args, &out, &errOut)
	return out.String(), err
}

// TestInitConfigNoFlags tests that only the endpoint is needed and everything else keeps its default
func TestInitConfigNoFlags(t *testing.T) {
	resetCLI(t)
	cmd.SetEndpointURLForTest("https://feed.example.org/news")

	cfg, err := cmd.InitConfigWithError(map[string]string{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	endpoint := url.URL{Scheme: "https", Host: "feed.example.org", Path: "/news"}
	defaultCfg, err := config.WithDefault(endpoint).Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}
	gotEndpoint, wantEndpoint := cfg.EndpointURL(), defaultCfg.EndpointURL()
	if gotEndpoint != wantEndpoint {
		t.Errorf("Expected EndpointURL %s, got %s", wantEndpoint.String(), gotEndpoint.String())
	}
	if cfg.FreshnessWindow() != defaultCfg.FreshnessWindow() {
		t.Errorf("Expected FreshnessWindow %v, got %v", defaultCfg.FreshnessWindow(), cfg.FreshnessWindow())
	}
	if cfg.StoreBackend() != defaultCfg.StoreBackend() {
		t.Errorf("Expected StoreBackend %s, got %s", defaultCfg.StoreBackend(), cfg.StoreBackend())
	}
	if cfg.OutputFormat() != defaultCfg.OutputFormat() {
		t.Errorf("Expected OutputFormat %s, got %s", defaultCfg.OutputFormat(), cfg.OutputFormat())
	}
	if cfg.ServeStaleOnError() {
		t.Error("Expected ServeStaleOnError false by default")
	}
}

// TestInitConfigWithoutEndpoint tests that a missing endpoint is a config error
func TestInitConfigWithoutEndpoint(t *testing.T) {
	resetCLI(t)

	_, err := cmd.InitConfigWithError(map[string]string{})
	if err == nil {
		t.Fatal("Expected error for missing endpoint, got nil")
	}
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got: %v", err)
	}
}

// TestInitConfigLayering tests that the environment overrides the file and flags override both
func TestInitConfigLayering(t *testing.T) {
	resetCLI(t)

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"endpointUrl":"https://file.example.org/news","timeout":"2s","freshnessWindow":"1h","storeBackend":"sqlite"}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	cmd.SetConfigFileForTest(path)
	cmd.SetFreshnessWindowForTest(30 * time.Minute)

	cfg, err := cmd.InitConfigWithError(map[string]string{
		"NEWSFEED_TIMEOUT":      "3s",
		"NEWSFEED_ENDPOINT_URL": "https://env.example.org/news",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.EndpointURL().Host != "env.example.org" {
		t.Errorf("Expected endpoint host from env, got %s", cfg.EndpointURL().Host)
	}
	if cfg.Timeout() != 3*time.Second {
		t.Errorf("Expected Timeout 3s from env, got %v", cfg.Timeout())
	}
	if cfg.FreshnessWindow() != 30*time.Minute {
		t.Errorf("Expected FreshnessWindow 30m from flag, got %v", cfg.FreshnessWindow())
	}
	if cfg.StoreBackend() != store.BackendSQLite {
		t.Errorf("Expected StoreBackend sqlite from file, got %s", cfg.StoreBackend())
	}
}

// TestInitConfigWithFlags tests that each flag is applied
func TestInitConfigWithFlags(t *testing.T) {
	resetCLI(t)
	dir := t.TempDir()
	cmd.SetEndpointURLForTest("http://localhost:9000/feed")
	cmd.SetOutputFormatForTest("json")
	cmd.SetStoreBackendForTest("memory")
	cmd.SetStoreDirForTest(dir)
	cmd.SetTimeoutForTest(7 * time.Second)
	cmd.SetUserAgentForTest("test-agent/2.0")
	cmd.SetLogLevelForTest("debug")
	cmd.SetServeStaleForTest(true)
	cmd.SetListenAddrForTest("127.0.0.1:9999")

	cfg, err := cmd.InitConfigWithError(map[string]string{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.OutputFormat() != view.FormatJSON {
		t.Errorf("Expected json format, got %s", cfg.OutputFormat())
	}
	if cfg.StoreBackend() != store.BackendMemory {
		t.Errorf("Expected memory backend, got %s", cfg.StoreBackend())
	}
	if cfg.StoreDir() != dir {
		t.Errorf("Expected StoreDir %s, got %s", dir, cfg.StoreDir())
	}
	if cfg.Timeout() != 7*time.Second {
		t.Errorf("Expected Timeout 7s, got %v", cfg.Timeout())
	}
	if cfg.UserAgent() != "test-agent/2.0" {
		t.Errorf("Expected UserAgent test-agent/2.0, got %s", cfg.UserAgent())
	}
	if cfg.LogLevel().String() != "debug" {
		t.Errorf("Expected debug log level, got %s", cfg.LogLevel())
	}
	if !cfg.ServeStaleOnError() {
		t.Error("Expected ServeStaleOnError true")
	}
	if cfg.ListenAddr() != "127.0.0.1:9999" {
		t.Errorf("Expected ListenAddr 127.0.0.1:9999, got %s", cfg.ListenAddr())
	}
}

// TestInitConfigInvalidFlags tests that bad flag values surface as config errors
func TestInitConfigInvalidFlags(t *testing.T) {
	tests := []struct {
		name  string
		apply func()
	}{
		{"unknown format", func() { cmd.SetOutputFormatForTest("pdf") }},
		{"unknown backend", func() { cmd.SetStoreBackendForTest("redis") }},
		{"unknown log level", func() { cmd.SetLogLevelForTest("loud") }},
		{"non http endpoint", func() { cmd.SetEndpointURLForTest("ftp://feed.example.org/news") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetCLI(t)
			cmd.SetEndpointURLForTest("https://feed.example.org/news")
			tt.apply()

			_, err := cmd.InitConfigWithError(map[string]string{})
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got: %v", err)
			}
		})
	}
}

func TestFeedCommand_ReusesCacheAcrossRuns(t *testing.T) {
	resetCLI(t)
	srv, hits := feedServer(t, http.StatusOK, feedPayload)
	dir := t.TempDir()
	args := []string{"--endpoint", srv.URL, "--store-dir", dir}

	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "# News Feed") || !strings.Contains(out, "## First") || !strings.Contains(out, "## Second") {
		t.Errorf("Expected both cards in output, got:\n%s", out)
	}
	if !strings.Contains(out, view.FallbackSummary) {
		t.Errorf("Expected summary fallback for the second card, got:\n%s", out)
	}

	if _, err := runCLI(t, args...); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("Expected one fetch across two runs, got %d", hits.Load())
	}

	if _, err := runCLI(t, append(args, "--refresh")...); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("Expected --refresh to fetch again, got %d fetches", hits.Load())
	}
}

func TestFeedCommand_FetchFailure(t *testing.T) {
	resetCLI(t)
	srv, _ := feedServer(t, http.StatusInternalServerError, `{"error":"boom"}`)

	out, err := runCLI(t, "--endpoint", srv.URL, "--store-backend", "memory")

	if !errors.Is(err, cmd.ErrFeedUnavailable) {
		t.Errorf("Expected ErrFeedUnavailable, got: %v", err)
	}
	if !strings.Contains(out, newscache.MessageFetchFailed) {
		t.Errorf("Expected fetch failure message, got:\n%s", out)
	}
}

func TestFeedCommand_FormatError(t *testing.T) {
	resetCLI(t)
	srv, _ := feedServer(t, http.StatusOK, `{"articles":[]}`)

	out, err := runCLI(t, "--endpoint", srv.URL, "--store-backend", "memory")

	if !errors.Is(err, cmd.ErrFeedUnavailable) {
		t.Errorf("Expected ErrFeedUnavailable, got: %v", err)
	}
	if !strings.Contains(out, newscache.MessageFormatError) {
		t.Errorf("Expected format error message, got:\n%s", out)
	}
}

func TestFeedCommand_EmptyList(t *testing.T) {
	resetCLI(t)
	srv, _ := feedServer(t, http.StatusOK, `[]`)

	out, err := runCLI(t, "--endpoint", srv.URL, "--store-backend", "memory")

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, newscache.MessageEmpty) {
		t.Errorf("Expected empty message, got:\n%s", out)
	}
}

func TestFeedCommand_JSONFormat(t *testing.T) {
	resetCLI(t)
	srv, _ := feedServer(t, http.StatusOK, feedPayload)

	out, err := runCLI(t, "--endpoint", srv.URL, "--store-backend", "memory", "--format", "json")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded struct {
		Outcome  string `json:"outcome"`
		Theme    string `json:"theme"`
		Year     int    `json:"year"`
		Articles []struct {
			Title string `json:"title"`
		} `json:"articles"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Expected JSON output, got %v:\n%s", err, out)
	}
	if decoded.Outcome != "articles" || len(decoded.Articles) != 2 {
		t.Errorf("Unexpected JSON page: %+v", decoded)
	}
	if decoded.Articles[0].Title != "First" {
		t.Errorf("Expected first title First, got %s", decoded.Articles[0].Title)
	}
	if decoded.Year != 2026 {
		t.Errorf("Expected year 2026, got %d", decoded.Year)
	}
	if decoded.Theme != string(theme.Default) {
		t.Errorf("Expected default theme, got %s", decoded.Theme)
	}
}

func TestStatusCommand(t *testing.T) {
	resetCLI(t)
	srv, hits := feedServer(t, http.StatusOK, feedPayload)
	dir := t.TempDir()
	args := []string{"--endpoint", srv.URL, "--store-dir", dir}

	out, err := runCLI(t, append([]string{"status"}, args...)...)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "absent") {
		t.Errorf("Expected absent state before the first fetch, got:\n%s", out)
	}

	if _, err := runCLI(t, args...); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out, err = runCLI(t, append([]string{"status"}, args...)...)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, want := range []string{"fresh", newscache.CacheKey, "file", "0s"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected status to contain %q, got:\n%s", want, out)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("Expected status not to fetch, got %d fetches", hits.Load())
	}

	cmd.SetNowForTest(timeutil.FixedClock(fixedNow.Add(13 * time.Hour)))
	out, err = runCLI(t, append([]string{"status"}, args...)...)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "stale") {
		t.Errorf("Expected stale state after the window, got:\n%s", out)
	}
}

func TestThemeCommand(t *testing.T) {
	resetCLI(t)
	args := []string{"--endpoint", "https://feed.example.org/news", "--store-dir", t.TempDir()}

	tests := []struct {
		name string
		arg  []string
		want string
	}{
		{"default", nil, "theme: dark"},
		{"set light", []string{"light"}, "theme: light"},
		{"persisted", nil, "theme: light"},
		{"toggle", []string{"toggle"}, "theme: dark"},
		{"set dark again", []string{"dark"}, "theme: dark"},
	}

	// steps share one store directory and run in order
	for _, tt := range tests {
		out, err := runCLI(t, append(append([]string{"theme"}, tt.arg...), args...)...)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if strings.TrimSpace(out) != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, strings.TrimSpace(out))
		}
	}

	if _, err := runCLI(t, append([]string{"theme", "blue"}, args...)...); err == nil {
		t.Error("Expected error for an unknown theme")
	}
}

func TestServeCommand_StopsWhenContextEnds(t *testing.T) {
	resetCLI(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	err := cmd.ExecuteWithArgs(ctx, []string{
		"serve", "--listen", "127.0.0.1:0",
		"--endpoint", "https://feed.example.org/news",
		"--store-backend", "memory",
	}, &out, &errOut)

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(errOut.String(), "https://feed.example.org/news") {
		t.Errorf("Expected the startup log to name the endpoint, got:\n%s", errOut.String())
	}
}

func TestVersionCommand(t *testing.T) {
	resetCLI(t)

	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "newsfeed dev+none") {
		t.Errorf("Unexpected version output: %q", out)
	}
}
