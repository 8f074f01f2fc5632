package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"truview/internal/domain"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	StoreDriver string // mysql|mongo
	MySQLDSN    string
	MongoURI    string
	MongoDB     string

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	TranslateProvider string // google|libre
	GoogleAPIKey      string
	LibreURL          string
	LibreKey          string
	TranslateRPS      int
	TranslateTimeout  time.Duration

	Languages        []string
	Workers          int
	QueueSize        int
	JobTimeout       time.Duration
	BackfillLimit    int
	BackfillWorkers  int
	ShutdownDeadline time.Duration
}

// Load reads the environment. A .env file in the working directory is
// applied first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric config value")
		}
		return def
	}
	secs := func(k string, def int) time.Duration {
		return time.Duration(atoi(k, def)) * time.Second
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),

		StoreDriver: strings.ToLower(env("STORE_DRIVER", "mysql")),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/truview?parseTime=true&charset=utf8mb4&loc=UTC"),
		MongoURI:    env("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     env("MONGO_DB", "truview"),

		RedisAddr: env("REDIS_ADDR", "localhost:6379"),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  secs("CACHE_TTL_SECONDS", 300),

		TranslateProvider: strings.ToLower(env("TRANSLATE_PROVIDER", "google")),
		GoogleAPIKey:      env("GOOGLE_TRANSLATE_API_KEY", ""),
		LibreURL:          env("LIBRETRANSLATE_URL", ""),
		LibreKey:          env("LIBRETRANSLATE_API_KEY", ""),
		TranslateRPS:      atoi("TRANSLATE_RPS", 10),
		TranslateTimeout:  secs("TRANSLATE_TIMEOUT_SECONDS", 15),

		Languages:        domain.ParseLanguages(env("SUPPORTED_LANGUAGES", strings.Join(domain.DefaultLanguages, ","))),
		Workers:          atoi("TRANSLATION_WORKERS", 4),
		QueueSize:        atoi("TRANSLATION_QUEUE", 256),
		JobTimeout:       secs("TRANSLATION_JOB_TIMEOUT_SECONDS", 60),
		BackfillLimit:    atoi("BACKFILL_LIMIT", 500),
		BackfillWorkers:  atoi("BACKFILL_WORKERS", 4),
		ShutdownDeadline: secs("SHUTDOWN_TIMEOUT_SECONDS", 20),
	}
	if !c.TranslationConfigured() {
		log.Warn().Str("provider", c.TranslateProvider).Msg("translation credentials missing; translation disabled")
	}
	return c
}

// TranslationConfigured reports whether the selected provider has what it needs.
func (c Config) TranslationConfigured() bool {
	switch c.TranslateProvider {
	case "libre", "libretranslate":
		return c.LibreURL != ""
	default:
		return c.GoogleAPIKey != ""
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
