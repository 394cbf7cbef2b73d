package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/rpsls-game/internal/platform/logging"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level
	CORSAllowedOrigins []string
	SwaggerEnabled     bool

	RandomSourceURL                   string
	RandomSourceTimeout               time.Duration
	RandomSourceMaxRetries            int
	RandomSourceBackoffBase           time.Duration
	RandomSourceCircuitEnabled        bool
	RandomSourceCircuitSamplingWindow time.Duration
	RandomSourceCircuitMinThroughput  int
	RandomSourceCircuitFailureRatio   float64
	RandomSourceCircuitBreakDuration  time.Duration
	RandomSourceCircuitHalfOpenMaxReq int

	ScoreStore             string
	SQLitePath             string
	DBURL                  string
	DBBinaryParameters     bool
	CacheEnabled           bool
	CacheTTL               time.Duration
	ScoreboardDefaultLimit int

	RateLimitRPS   float64
	RateLimitBurst int
	MetricsEnabled bool

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
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	logLevel, err := logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
	}

	readTimeout, err := getEnvAsPositiveDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := getEnvAsPositiveDuration("APP_WRITE_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}

	randomSourceURL, err := parseHTTPURL("RANDOM_SOURCE_URL", getEnv("RANDOM_SOURCE_URL", ""))
	if err != nil {
		return Config{}, err
	}
	randomSourceTimeout, err := getEnvAsPositiveDuration("RANDOM_SOURCE_TIMEOUT", "5s")
	if err != nil {
		return Config{}, err
	}
	randomSourceMaxRetries, err := getEnvAsInt("RANDOM_SOURCE_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse RANDOM_SOURCE_MAX_RETRIES: %w", err)
	}
	if randomSourceMaxRetries < 0 {
		return Config{}, fmt.Errorf("RANDOM_SOURCE_MAX_RETRIES must be >= 0")
	}
	randomSourceBackoffBase, err := getEnvAsPositiveDuration("RANDOM_SOURCE_BACKOFF_BASE", "2s")
	if err != nil {
		return Config{}, err
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("RANDOM_SOURCE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RANDOM_SOURCE_CIRCUIT_ENABLED: %w", err)
	}
	circuitSamplingWindow, err := getEnvAsPositiveDuration("RANDOM_SOURCE_CIRCUIT_SAMPLING_WINDOW", "30s")
	if err != nil {
		return Config{}, err
	}
	circuitMinThroughput, err := getEnvAsInt("RANDOM_SOURCE_CIRCUIT_MIN_THROUGHPUT", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse RANDOM_SOURCE_CIRCUIT_MIN_THROUGHPUT: %w", err)
	}
	if circuitMinThroughput < 1 {
		return Config{}, fmt.Errorf("RANDOM_SOURCE_CIRCUIT_MIN_THROUGHPUT must be >= 1")
	}
	circuitFailureRatio, err := strconv.ParseFloat(getEnv("RANDOM_SOURCE_CIRCUIT_FAILURE_RATIO", "0.5"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse RANDOM_SOURCE_CIRCUIT_FAILURE_RATIO: %w", err)
	}
	if circuitFailureRatio <= 0 || circuitFailureRatio > 1 {
		return Config{}, fmt.Errorf("RANDOM_SOURCE_CIRCUIT_FAILURE_RATIO must be in (0, 1]")
	}
	circuitBreakDuration, err := getEnvAsPositiveDuration("RANDOM_SOURCE_CIRCUIT_BREAK_DURATION", "15s")
	if err != nil {
		return Config{}, err
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("RANDOM_SOURCE_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse RANDOM_SOURCE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if circuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("RANDOM_SOURCE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	scoreStore, err := parseScoreStore(getEnv("SCORE_STORE", StoreSQLite))
	if err != nil {
		return Config{}, err
	}
	sqlitePath := strings.TrimSpace(getEnv("SQLITE_PATH", "data/scoreboard.db"))
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if scoreStore == StorePostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when SCORE_STORE=%s", StorePostgres)
	}
	dbBinaryParameters, err := strconv.ParseBool(getEnv("DB_BINARY_PARAMETERS", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_BINARY_PARAMETERS: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := getEnvAsPositiveDuration("CACHE_TTL", "30s")
	if err != nil {
		return Config{}, err
	}

	scoreboardDefaultLimit, err := getEnvAsInt("SCOREBOARD_DEFAULT_LIMIT", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCOREBOARD_DEFAULT_LIMIT: %w", err)
	}
	if scoreboardDefaultLimit < 1 || scoreboardDefaultLimit > 100 {
		return Config{}, fmt.Errorf("SCOREBOARD_DEFAULT_LIMIT must be between 1 and 100")
	}

	rateLimitRPS, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "0"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse RATE_LIMIT_RPS: %w", err)
	}
	if rateLimitRPS < 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	rateLimitBurst, err := getEnvAsInt("RATE_LIMIT_BURST", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse RATE_LIMIT_BURST: %w", err)
	}
	if rateLimitBurst < 1 {
		return Config{}, fmt.Errorf("RATE_LIMIT_BURST must be >= 1")
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                            appEnv,
		ServiceName:                       getEnv("APP_SERVICE_NAME", "rpsls-game-api"),
		ServiceVersion:                    getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                          getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                       readTimeout,
		WriteTimeout:                      writeTimeout,
		LogLevel:                          logLevel,
		CORSAllowedOrigins:                splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:                    swaggerEnabled,
		RandomSourceURL:                   randomSourceURL,
		RandomSourceTimeout:               randomSourceTimeout,
		RandomSourceMaxRetries:            randomSourceMaxRetries,
		RandomSourceBackoffBase:           randomSourceBackoffBase,
		RandomSourceCircuitEnabled:        circuitEnabled,
		RandomSourceCircuitSamplingWindow: circuitSamplingWindow,
		RandomSourceCircuitMinThroughput:  circuitMinThroughput,
		RandomSourceCircuitFailureRatio:   circuitFailureRatio,
		RandomSourceCircuitBreakDuration:  circuitBreakDuration,
		RandomSourceCircuitHalfOpenMaxReq: circuitHalfOpenMaxReq,
		ScoreStore:                        scoreStore,
		SQLitePath:                        sqlitePath,
		DBURL:                             dbURL,
		DBBinaryParameters:                dbBinaryParameters,
		CacheEnabled:                      cacheEnabled,
		CacheTTL:                          cacheTTL,
		ScoreboardDefaultLimit:            scoreboardDefaultLimit,
		RateLimitRPS:                      rateLimitRPS,
		RateLimitBurst:                    rateLimitBurst,
		MetricsEnabled:                    metricsEnabled,
		PprofEnabled:                      pprofEnabled,
		PprofAddr:                         pprofAddr,
		UptraceEnabled:                    uptraceEnabled,
		UptraceDSN:                        uptraceDSN,
		UptraceLogsEnabled:                uptraceLogsEnabled,
		PyroscopeEnabled:                  pyroscopeEnabled,
		PyroscopeServerAddress:            pyroscopeServerAddress,
		PyroscopeAuthToken:                strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:            strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:        strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:               pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.ScoreStore == StoreSQLite && cfg.SQLitePath == "" {
		return Config{}, fmt.Errorf("SQLITE_PATH cannot be empty when SCORE_STORE=%s", StoreSQLite)
	}

	return cfg, nil
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

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return value, nil
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

func parseHTTPURL(key, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%s must use http or https, got %q", key, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%s must include a host", key)
	}
	return value, nil
}

func parseScoreStore(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case StoreMemory, StoreSQLite, StorePostgres:
		return value, nil
	default:
		return "", fmt.Errorf("invalid SCORE_STORE %q: valid values are %s, %s, %s", v, StoreMemory, StoreSQLite, StorePostgres)
	}
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

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
