package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	// Backend selects the table store: "apper" (remote), "mysql" or "memory".
	Backend string

	ApperBase      string
	ApperProjectID string
	ApperPublicKey string
	ApperRPS       int

	MySQLDSN string

	RedisAddr string
	RedisPass string
	RedisDB   int

	CacheTTL    time.Duration
	SeedWorkers int
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		Backend:        env("BACKEND", "apper"),
		ApperBase:      env("APPER_BASE_URL", "https://api.apper.io/v1"),
		ApperProjectID: env("APPER_PROJECT_ID", ""),
		ApperPublicKey: env("APPER_PUBLIC_KEY", ""),
		ApperRPS:       atoi("APPER_RPS", 10),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/stayscape?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		SeedWorkers:    atoi("SEED_WORKERS", 4),
	}
	if c.Backend == "apper" && c.ApperProjectID == "" {
		log.Warn().Msg("APPER_PROJECT_ID is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
