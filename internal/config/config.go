package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"github.com/riskibarqy/daily-pick/internal/platform/resilience"
	"github.com/riskibarqy/daily-pick/internal/usecase"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	SportsbookProviderOddsAPI  = "odds_api"
	SportsbookProviderPropFeed = "prop_feed"
	SportsbookProviderNone     = "none"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	DBURL                   string
	DBDisablePreparedBinary bool
	CacheEnabled            bool
	CacheTTL                time.Duration
	CORSAllowedOrigins      []string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	ShutdownTimeout         time.Duration
	LogLevel                logging.Level

	MetricsEnabled             bool
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	ProjectionPreference      string
	ProjectionFallbackEnabled bool
	HistoricalAvgEnabled      bool
	HistoricalAvgGames        int
	SportsbookProvider        string
	SportsbookCacheTTL        time.Duration
	ScoringWeights            map[string]float64
	ScoringWorkers            int
	PickLockTimezone          string
	PickLockHour              int
	PickLockMinute            int

	NBAStatsBaseURL    string
	NBAStatsUserAgent  string
	NBAStatsTimeout    time.Duration
	NBAStatsMaxRetries int
	NBAStatsCircuit    resilience.CircuitBreakerConfig

	OddsAPIBaseURL    string
	OddsAPIKey        string
	OddsAPIRegions    string
	OddsAPITimeout    time.Duration
	OddsAPIMaxRetries int
	OddsAPICacheTTL   time.Duration
	OddsAPICircuit    resilience.CircuitBreakerConfig

	PropFeedBaseURL    string
	PropFeedAPIKey     string
	PropFeedTimeout    time.Duration
	PropFeedMaxRetries int
	PropFeedCircuit    resilience.CircuitBreakerConfig
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "daily-pick-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:              strings.TrimSpace(os.Getenv("DB_URL")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if cfg.DBDisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", true); err != nil {
		return Config{}, err
	}
	if cfg.CacheEnabled, err = getEnvAsBool("CACHE_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getPositiveDuration("CACHE_TTL", "60s"); err != nil {
		return Config{}, err
	}
	if cfg.ReadTimeout, err = getPositiveDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getPositiveDuration("APP_WRITE_TIMEOUT", "60s"); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getPositiveDuration("APP_SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}

	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadScoring(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadUpstreams(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.MetricsEnabled, err = getEnvAsBool("METRICS_ENABLED", true); err != nil {
		return err
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return err
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.UptraceLogsEnabled, err = getEnvAsBool("UPTRACE_LOGS_ENABLED", false); err != nil {
		return err
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = getPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	return nil
}

func loadScoring(cfg *Config) error {
	var err error

	preference, err := usecase.ParseProjectionPreference(getEnv("PROJECTION_PROVIDER", string(usecase.PreferSportsbook)))
	if err != nil {
		return fmt.Errorf("invalid PROJECTION_PROVIDER: %w", err)
	}
	cfg.ProjectionPreference = string(preference)
	if cfg.ProjectionFallbackEnabled, err = getEnvAsBool("PROJECTION_FALLBACK_ENABLED", false); err != nil {
		return err
	}
	if cfg.HistoricalAvgEnabled, err = getEnvAsBool("HISTORICAL_AVG_ENABLED", false); err != nil {
		return err
	}
	usesHistorical := preference == usecase.PreferHistorical || cfg.ProjectionFallbackEnabled
	if usesHistorical && !cfg.HistoricalAvgEnabled {
		return fmt.Errorf("HISTORICAL_AVG_ENABLED must be true when PROJECTION_PROVIDER=%s or PROJECTION_FALLBACK_ENABLED=true", preference)
	}
	if cfg.HistoricalAvgGames, err = getEnvAsInt("HISTORICAL_AVG_GAMES", 10); err != nil {
		return fmt.Errorf("parse HISTORICAL_AVG_GAMES: %w", err)
	}
	if cfg.HistoricalAvgGames <= 0 {
		return fmt.Errorf("HISTORICAL_AVG_GAMES must be > 0")
	}

	cfg.SportsbookProvider = strings.ToLower(strings.TrimSpace(getEnv("SPORTSBOOK_PROVIDER", SportsbookProviderNone)))
	switch cfg.SportsbookProvider {
	case SportsbookProviderOddsAPI, SportsbookProviderPropFeed, SportsbookProviderNone:
	default:
		return fmt.Errorf("invalid SPORTSBOOK_PROVIDER %q: valid values are %s, %s, %s",
			cfg.SportsbookProvider, SportsbookProviderOddsAPI, SportsbookProviderPropFeed, SportsbookProviderNone)
	}
	ttlSeconds, err := getEnvAsInt("SPORTSBOOK_CACHE_TTL_SECONDS", 1800)
	if err != nil {
		return fmt.Errorf("parse SPORTSBOOK_CACHE_TTL_SECONDS: %w", err)
	}
	if ttlSeconds <= 0 {
		return fmt.Errorf("SPORTSBOOK_CACHE_TTL_SECONDS must be > 0")
	}
	cfg.SportsbookCacheTTL = time.Duration(ttlSeconds) * time.Second

	if cfg.ScoringWeights, err = parseWeightMap(getEnv("SCORING_WEIGHTS", "")); err != nil {
		return fmt.Errorf("parse SCORING_WEIGHTS: %w", err)
	}
	if cfg.ScoringWorkers, err = getEnvAsInt("SCORING_WORKERS", 4); err != nil {
		return fmt.Errorf("parse SCORING_WORKERS: %w", err)
	}
	if cfg.ScoringWorkers <= 0 {
		return fmt.Errorf("SCORING_WORKERS must be > 0")
	}

	cfg.PickLockTimezone = strings.TrimSpace(getEnv("PICK_LOCK_TIMEZONE", "America/Chicago"))
	if _, err := time.LoadLocation(cfg.PickLockTimezone); err != nil {
		return fmt.Errorf("parse PICK_LOCK_TIMEZONE: %w", err)
	}
	lockAt, err := time.Parse("15:04", strings.TrimSpace(getEnv("PICK_LOCK_TIME", "18:00")))
	if err != nil {
		return fmt.Errorf("parse PICK_LOCK_TIME: %w", err)
	}
	cfg.PickLockHour, cfg.PickLockMinute = lockAt.Hour(), lockAt.Minute()
	return nil
}

func loadUpstreams(cfg *Config) error {
	var err error

	cfg.NBAStatsBaseURL = strings.TrimSpace(getEnv("NBA_STATS_BASE_URL", "https://stats.nba.com/stats"))
	cfg.NBAStatsUserAgent = strings.TrimSpace(getEnv("NBA_STATS_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) daily-pick"))
	if cfg.NBAStatsTimeout, err = getPositiveDuration("NBA_STATS_TIMEOUT", "20s"); err != nil {
		return err
	}
	if cfg.NBAStatsMaxRetries, err = getRetries("NBA_STATS_MAX_RETRIES", 2); err != nil {
		return err
	}
	if cfg.NBAStatsCircuit, err = loadCircuit("NBA_STATS"); err != nil {
		return err
	}

	cfg.OddsAPIBaseURL = strings.TrimSpace(getEnv("ODDS_API_BASE_URL", "https://api.the-odds-api.com/v4"))
	cfg.OddsAPIKey = strings.TrimSpace(getEnv("ODDS_API_KEY", ""))
	cfg.OddsAPIRegions = strings.TrimSpace(getEnv("ODDS_API_REGIONS", "us"))
	if cfg.OddsAPITimeout, err = getPositiveDuration("ODDS_API_TIMEOUT", "10s"); err != nil {
		return err
	}
	if cfg.OddsAPIMaxRetries, err = getRetries("ODDS_API_MAX_RETRIES", 1); err != nil {
		return err
	}
	if cfg.OddsAPICacheTTL, err = getPositiveDuration("ODDS_API_CACHE_TTL", "5m"); err != nil {
		return err
	}
	if cfg.OddsAPICircuit, err = loadCircuit("ODDS_API"); err != nil {
		return err
	}
	if cfg.SportsbookProvider == SportsbookProviderOddsAPI && cfg.OddsAPIKey == "" {
		return fmt.Errorf("ODDS_API_KEY is required when SPORTSBOOK_PROVIDER=%s", SportsbookProviderOddsAPI)
	}

	cfg.PropFeedBaseURL = strings.TrimSpace(getEnv("PROP_FEED_BASE_URL", ""))
	cfg.PropFeedAPIKey = strings.TrimSpace(getEnv("PROP_FEED_API_KEY", ""))
	if cfg.PropFeedTimeout, err = getPositiveDuration("PROP_FEED_TIMEOUT", "5s"); err != nil {
		return err
	}
	if cfg.PropFeedMaxRetries, err = getRetries("PROP_FEED_MAX_RETRIES", 1); err != nil {
		return err
	}
	if cfg.PropFeedCircuit, err = loadCircuit("PROP_FEED"); err != nil {
		return err
	}
	if cfg.SportsbookProvider == SportsbookProviderPropFeed && cfg.PropFeedBaseURL == "" {
		return fmt.Errorf("PROP_FEED_BASE_URL is required when SPORTSBOOK_PROVIDER=%s", SportsbookProviderPropFeed)
	}
	return nil
}

// loadCircuit reads <PREFIX>_CIRCUIT_{ENABLED,FAILURE_COUNT,OPEN_TIMEOUT,HALF_OPEN_MAX_REQ}.
func loadCircuit(prefix string) (resilience.CircuitBreakerConfig, error) {
	defaults := resilience.DefaultCircuitBreakerConfig()
	out := resilience.CircuitBreakerConfig{}

	var err error
	if out.Enabled, err = getEnvAsBool(prefix+"_CIRCUIT_ENABLED", defaults.Enabled); err != nil {
		return out, err
	}

	key := prefix + "_CIRCUIT_FAILURE_COUNT"
	if out.FailureThreshold, err = getEnvAsInt(key, defaults.FailureThreshold); err != nil {
		return out, fmt.Errorf("parse %s: %w", key, err)
	}
	if out.FailureThreshold < 1 {
		return out, fmt.Errorf("%s must be >= 1", key)
	}

	if out.OpenTimeout, err = getPositiveDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", defaults.OpenTimeout.String()); err != nil {
		return out, err
	}

	key = prefix + "_CIRCUIT_HALF_OPEN_MAX_REQ"
	if out.HalfOpenMaxReq, err = getEnvAsInt(key, defaults.HalfOpenMaxReq); err != nil {
		return out, fmt.Errorf("parse %s: %w", key, err)
	}
	if out.HalfOpenMaxReq < 1 {
		return out, fmt.Errorf("%s must be >= 1", key)
	}
	return out, nil
}

// PickLockLocation resolves PickLockTimezone; Load has already validated it.
func (c Config) PickLockLocation() *time.Location {
	loc, err := time.LoadLocation(c.PickLockTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseLogLevel(v string) logging.Level {
	level, err := logging.ParseLevel(v)
	if err != nil {
		return logging.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getPositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func getRetries(key string, fallback int) (int, error) {
	out, err := getEnvAsInt(key, fallback)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out < 0 {
		return 0, fmt.Errorf("%s must be >= 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseWeightMap reads "points:1,turnovers:-1.5". Category names are checked by the scoring package.
func parseWeightMap(raw string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, part := range strings.Split(raw, ",") {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}

		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid weight item %q, expected stat:number", item)
		}

		key := strings.ToLower(strings.TrimSpace(segments[0]))
		if key == "" {
			return nil, fmt.Errorf("empty stat name in item %q", item)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(segments[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number in item %q: %w", item, err)
		}

		out[key] = value
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
