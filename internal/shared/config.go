package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv       string
	HTTPAddr     string
	MetricsAddr  string
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	CMSBase      string
	CMSKey       string
	Workers      int
	CacheTTL     time.Duration
	StoreTimeout time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ":9100"),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/stages?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		CMSBase:      env("CMS_BASE_URL", "https://admin.digitalwebsuccess.com/mysql-api"),
		CMSKey:       env("CMS_API_KEY", ""),
		Workers:      atoi("IMPORT_WORKERS", 8),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		StoreTimeout: time.Duration(atoi("STORE_TIMEOUT_MS", 5000)) * time.Millisecond,
	}
	c.RedisDB = atoi("REDIS_DB", 0)
	if c.CMSKey == "" {
		log.Warn().Msg("CMS_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
