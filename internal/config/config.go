package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"github.com/rohmanhakim/newsfeed/internal/build"
	"github.com/rohmanhakim/newsfeed/internal/newscache"
	"github.com/rohmanhakim/newsfeed/internal/store"
	"github.com/rohmanhakim/newsfeed/internal/view"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the overlay reads.
const EnvPrefix = "NEWSFEED_"

type Config struct {
	//===============
	//  Source
	//===============
	// Feed endpoint answering GET with a JSON array of articles
	endpointURL url.URL
	// Maximum time of a single fetch request
	timeout time.Duration
	// User agent that will be used in the request header. In raw string
	userAgent string

	//===============
	// Cache
	//===============
	// How long a fetched payload is served without refetching
	freshnessWindow time.Duration
	// Serve the expired payload when a refresh fetch fails
	serveStaleOnError bool

	//===============
	// Storage
	//===============
	// One of memory, file, sqlite
	storeBackend store.Backend
	// Directory holding the file and sqlite backends
	storeDir string

	//===============
	// Output
	//===============
	// Address the serve command listens on
	listenAddr string
	// Minimum level for log output
	logLevel zerolog.Level
	// One of markdown, html, json
	outputFormat view.Format
}

type configDTO struct {
	EndpointURL       string   `json:"endpointUrl" yaml:"endpointUrl"`
	Timeout           Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	UserAgent         string   `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	FreshnessWindow   Duration `json:"freshnessWindow,omitempty" yaml:"freshnessWindow,omitempty"`
	ServeStaleOnError *bool    `json:"serveStaleOnError,omitempty" yaml:"serveStaleOnError,omitempty"`
	StoreBackend      string   `json:"storeBackend,omitempty" yaml:"storeBackend,omitempty"`
	StoreDir          string   `json:"storeDir,omitempty" yaml:"storeDir,omitempty"`
	ListenAddr        string   `json:"listenAddr,omitempty" yaml:"listenAddr,omitempty"`
	LogLevel          string   `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	OutputFormat      string   `json:"outputFormat,omitempty" yaml:"outputFormat,omitempty"`
}

// envDTO mirrors configDTO for the environment. Unset variables stay nil.
type envDTO struct {
	EndpointURL       *string        `env:"ENDPOINT_URL"`
	Timeout           *time.Duration `env:"TIMEOUT"`
	UserAgent         *string        `env:"USER_AGENT"`
	FreshnessWindow   *time.Duration `env:"FRESHNESS_WINDOW"`
	ServeStaleOnError *bool          `env:"SERVE_STALE_ON_ERROR"`
	StoreBackend      *string        `env:"STORE_BACKEND"`
	StoreDir          *string        `env:"STORE_DIR"`
	ListenAddr        *string        `env:"LISTEN_ADDR"`
	LogLevel          *string        `env:"LOG_LEVEL"`
	OutputFormat      *string        `env:"OUTPUT_FORMAT"`
}

func (c *Config) applyDTO(dto configDTO) error {
	if dto.EndpointURL != "" {
		u, err := url.Parse(dto.EndpointURL)
		if err != nil {
			return fmt.Errorf("%w: endpointUrl: %s", ErrInvalidConfig, err.Error())
		}
		c.endpointURL = *u
	}

	// For other fields, only override if non-zero value is provided
	if dto.Timeout != 0 {
		c.timeout = time.Duration(dto.Timeout)
	}
	if dto.UserAgent != "" {
		c.userAgent = dto.UserAgent
	}
	if dto.FreshnessWindow != 0 {
		c.freshnessWindow = time.Duration(dto.FreshnessWindow)
	}
	if dto.ServeStaleOnError != nil {
		c.serveStaleOnError = *dto.ServeStaleOnError
	}
	if dto.StoreBackend != "" {
		c.storeBackend = store.Backend(dto.StoreBackend)
	}
	if dto.StoreDir != "" {
		c.storeDir = dto.StoreDir
	}
	if dto.ListenAddr != "" {
		c.listenAddr = dto.ListenAddr
	}
	if dto.LogLevel != "" {
		level, err := zerolog.ParseLevel(dto.LogLevel)
		if err != nil {
			return fmt.Errorf("%w: logLevel: %s", ErrInvalidConfig, err.Error())
		}
		c.logLevel = level
	}
	if dto.OutputFormat != "" {
		c.outputFormat = view.Format(dto.OutputFormat)
	}
	return nil
}

// WithEnv overlays NEWSFEED_* variables from environ on top of the current values.
// A nil environ reads the process environment.
func (c *Config) WithEnv(environ map[string]string) error {
	overlay := envDTO{}
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&overlay, opts); err != nil {
		return fmt.Errorf("%w: %s", ErrEnvParsingFail, err.Error())
	}

	dto := configDTO{}
	if overlay.EndpointURL != nil {
		dto.EndpointURL = *overlay.EndpointURL
	}
	if overlay.Timeout != nil {
		dto.Timeout = Duration(*overlay.Timeout)
	}
	if overlay.UserAgent != nil {
		dto.UserAgent = *overlay.UserAgent
	}
	if overlay.FreshnessWindow != nil {
		dto.FreshnessWindow = Duration(*overlay.FreshnessWindow)
	}
	dto.ServeStaleOnError = overlay.ServeStaleOnError
	if overlay.StoreBackend != nil {
		dto.StoreBackend = *overlay.StoreBackend
	}
	if overlay.StoreDir != nil {
		dto.StoreDir = *overlay.StoreDir
	}
	if overlay.ListenAddr != nil {
		dto.ListenAddr = *overlay.ListenAddr
	}
	if overlay.LogLevel != nil {
		dto.LogLevel = *overlay.LogLevel
	}
	if overlay.OutputFormat != nil {
		dto.OutputFormat = *overlay.OutputFormat
	}
	return c.applyDTO(dto)
}

func readConfigFile(path string) (configDTO, error) {
	_, err := os.Stat(path)
	if err != nil {
		return configDTO{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return configDTO{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(configContent, &cfgDTO)
	default:
		err = json.Unmarshal(configContent, &cfgDTO)
	}
	if err != nil {
		return configDTO{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}
	return cfgDTO, nil
}

func WithConfigFile(path string) (Config, error) {
	cfgDTO, err := readConfigFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := WithDefault(url.URL{})
	if err := cfg.applyDTO(cfgDTO); err != nil {
		return Config{}, err
	}
	return cfg.Build()
}

// Load layers defaults, the optional config file and the environment, in that order.
func Load(path string, environ map[string]string) (Config, error) {
	cfg, err := LoadBuilder(path, environ)
	if err != nil {
		return Config{}, err
	}
	return cfg.Build()
}

// LoadBuilder layers like Load but leaves validation to Build,
// so callers can apply further overrides first.
func LoadBuilder(path string, environ map[string]string) (*Config, error) {
	cfg := WithDefault(url.URL{})
	if path != "" {
		cfgDTO, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.applyDTO(cfgDTO); err != nil {
			return nil, err
		}
	}
	if err := cfg.WithEnv(environ); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultStoreDir is the newsfeed directory under the XDG cache home.
func DefaultStoreDir() string {
	return filepath.Join(xdg.CacheHome, "newsfeed")
}

// DefaultConfigPath is the config file looked up when none is given explicitly.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "newsfeed", "config.yaml")
}

// WithDefault creates a new Config with the provided endpoint and default values for all other fields.
// endpoint is mandatory; Build fails when it is empty.
func WithDefault(endpoint url.URL) *Config {
	defaultConfig := Config{
		endpointURL:       endpoint,
		timeout:           10 * time.Second,
		userAgent:         build.UserAgent(),
		freshnessWindow:   newscache.DefaultFreshnessWindow,
		serveStaleOnError: false,
		storeBackend:      store.BackendFile,
		storeDir:          DefaultStoreDir(),
		listenAddr:        ":8080",
		logLevel:          zerolog.InfoLevel,
		outputFormat:      view.FormatMarkdown,
	}
	return &defaultConfig
}

func (c *Config) WithEndpointURL(endpoint url.URL) *Config {
	c.endpointURL = endpoint
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithFreshnessWindow(window time.Duration) *Config {
	c.freshnessWindow = window
	return c
}

func (c *Config) WithServeStaleOnError(enabled bool) *Config {
	c.serveStaleOnError = enabled
	return c
}

func (c *Config) WithStoreBackend(backend store.Backend) *Config {
	c.storeBackend = backend
	return c
}

func (c *Config) WithStoreDir(dir string) *Config {
	c.storeDir = dir
	return c
}

func (c *Config) WithListenAddr(addr string) *Config {
	c.listenAddr = addr
	return c
}

func (c *Config) WithLogLevel(level zerolog.Level) *Config {
	c.logLevel = level
	return c
}

func (c *Config) WithOutputFormat(format view.Format) *Config {
	c.outputFormat = format
	return c
}

func (c *Config) Build() (Config, error) {
	if c.endpointURL.Host == "" {
		return Config{}, fmt.Errorf("%w: endpointUrl cannot be empty", ErrInvalidConfig)
	}
	if c.endpointURL.Scheme != "http" && c.endpointURL.Scheme != "https" {
		return Config{}, fmt.Errorf("%w: endpointUrl must be http or https, got %q", ErrInvalidConfig, c.endpointURL.Scheme)
	}
	if c.freshnessWindow <= 0 {
		return Config{}, fmt.Errorf("%w: freshnessWindow must be positive, got %v", ErrInvalidConfig, c.freshnessWindow)
	}
	if c.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidConfig, c.timeout)
	}
	if !c.storeBackend.Valid() {
		return Config{}, fmt.Errorf("%w: storeBackend must be memory, file or sqlite, got %q", ErrInvalidConfig, c.storeBackend)
	}
	if c.storeBackend != store.BackendMemory && c.storeDir == "" {
		return Config{}, fmt.Errorf("%w: storeDir cannot be empty for the %s backend", ErrInvalidConfig, c.storeBackend)
	}
	if !c.outputFormat.Valid() {
		return Config{}, fmt.Errorf("%w: outputFormat must be markdown, html or json, got %q", ErrInvalidConfig, c.outputFormat)
	}
	if c.listenAddr == "" {
		return Config{}, fmt.Errorf("%w: listenAddr cannot be empty", ErrInvalidConfig)
	}
	return *c, nil
}

func (c Config) EndpointURL() url.URL {
	return c.endpointURL
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) FreshnessWindow() time.Duration {
	return c.freshnessWindow
}

func (c Config) ServeStaleOnError() bool {
	return c.serveStaleOnError
}

func (c Config) StoreBackend() store.Backend {
	return c.storeBackend
}

func (c Config) StoreDir() string {
	return c.storeDir
}

func (c Config) ListenAddr() string {
	return c.listenAddr
}

func (c Config) LogLevel() zerolog.Level {
	return c.logLevel
}

func (c Config) OutputFormat() view.Format {
	return c.outputFormat
}
