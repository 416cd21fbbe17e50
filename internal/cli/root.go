package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohmanhakim/newsfeed/internal/config"
	"github.com/rohmanhakim/newsfeed/internal/store"
	"github.com/rohmanhakim/newsfeed/internal/view"
	"github.com/rohmanhakim/newsfeed/pkg/timeutil"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// ErrFeedUnavailable is returned after the failure message has been rendered,
// so the process exits non-zero.
var ErrFeedUnavailable = errors.New("news feed unavailable")

var (
	cfgFile         string
	endpointURL     string
	outputFormat    string
	refresh         bool
	storeBackend    string
	storeDir        string
	freshnessWindow time.Duration
	timeout         time.Duration
	userAgent       string
	logLevel        string
	serveStale      bool
	listenAddr      string

	// nil reads the process environment
	environ map[string]string
	nowFunc timeutil.NowFunc = time.Now
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "newsfeed",
	Short: "Show the latest news, refetching only when the cached copy is stale.",
	Long: `newsfeed fetches a list of articles from a JSON endpoint and renders it
as Markdown, HTML or JSON.

A fetched list is stored locally together with its fetch time and is reused
until it is older than the freshness window (12h by default). Use --refresh
to fetch regardless of age.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError(environ)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, cmd.ErrOrStderr(), nowFunc)
		if err != nil {
			return err
		}
		defer a.close()

		return a.showFeed(cmd.Context(), cmd.OutOrStdout(), cfg.OutputFormat(), refresh)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := ExecuteWithArgs(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// ExecuteWithArgs runs the command tree against args, writing to out and errOut.
func ExecuteWithArgs(ctx context.Context, args []string, out, errOut io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path, JSON or YAML (default $XDG_CONFIG_HOME/newsfeed/config.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&endpointURL, "endpoint", "", "feed endpoint returning a JSON array of articles")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store-backend", "", "where the cache lives: memory, file or sqlite")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store-dir", "", "directory for the file and sqlite backends")
	rootCmd.PersistentFlags().DurationVar(&freshnessWindow, "freshness-window", 0, "how long a fetched list is reused")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for the feed request")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for the feed request")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "minimum log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&serveStale, "serve-stale", false, "show the expired list when a refresh fails")

	rootCmd.Flags().StringVar(&outputFormat, "format", "", "output format: markdown, html or json")
	rootCmd.Flags().BoolVar(&refresh, "refresh", false, "fetch even when the cached list is fresh")

	rootCmd.AddCommand(statusCmd, themeCmd, serveCmd, versionCmd)
}

// InitConfigWithError layers defaults, the config file, the environment and CLI flags,
// in that order, returning any errors.
func InitConfigWithError(environ map[string]string) (config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath()); err == nil {
			path = config.DefaultConfigPath()
		}
	}

	configBuilder, err := config.LoadBuilder(path, environ)
	if err != nil {
		return config.Config{}, fmt.Errorf("error initializing config: %w", err)
	}

	// Override with CLI flag values where provided
	if endpointURL != "" {
		u, err := url.Parse(endpointURL)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: endpoint: %s", config.ErrInvalidConfig, err.Error())
		}
		configBuilder = configBuilder.WithEndpointURL(*u)
	}

	if outputFormat != "" {
		configBuilder = configBuilder.WithOutputFormat(view.Format(outputFormat))
	}

	if storeBackend != "" {
		configBuilder = configBuilder.WithStoreBackend(store.Backend(storeBackend))
	}

	if storeDir != "" {
		configBuilder = configBuilder.WithStoreDir(storeDir)
	}

	if freshnessWindow > 0 {
		configBuilder = configBuilder.WithFreshnessWindow(freshnessWindow)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if logLevel != "" {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: log-level: %s", config.ErrInvalidConfig, err.Error())
		}
		configBuilder = configBuilder.WithLogLevel(level)
	}

	if serveStale {
		configBuilder = configBuilder.WithServeStaleOnError(true)
	}

	if listenAddr != "" {
		configBuilder = configBuilder.WithListenAddr(listenAddr)
	}

	return configBuilder.Build()
}

func ResetFlags() {
	cfgFile = ""
	endpointURL = ""
	outputFormat = ""
	refresh = false
	storeBackend = ""
	storeDir = ""
	freshnessWindow = 0
	timeout = 0
	userAgent = ""
	logLevel = ""
	serveStale = false
	listenAddr = ""
	environ = nil
	nowFunc = time.Now
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetEndpointURLForTest(endpoint string) {
	endpointURL = endpoint
}

func SetOutputFormatForTest(format string) {
	outputFormat = format
}

func SetStoreBackendForTest(backend string) {
	storeBackend = backend
}

func SetStoreDirForTest(dir string) {
	storeDir = dir
}

func SetFreshnessWindowForTest(window time.Duration) {
	freshnessWindow = window
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetLogLevelForTest(level string) {
	logLevel = level
}

func SetServeStaleForTest(enabled bool) {
	serveStale = enabled
}

func SetListenAddrForTest(addr string) {
	listenAddr = addr
}

func SetEnvironForTest(env map[string]string) {
	environ = env
}

func SetNowForTest(now timeutil.NowFunc) {
	nowFunc = now
}
