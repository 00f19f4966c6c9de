package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// RegistryBackend is "memory" (single process) or "redis".
	RegistryBackend string

	JWTSecret string
	TokenTTL  time.Duration

	// rabbitMQ; empty URL disables activity events
	RabbitURL   string
	RabbitQueue string

	CORSOrigins []string
}

func Load() Config {
	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "postgres"
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = defaultDSN(driver)
	}

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	backend := strings.ToLower(os.Getenv("REGISTRY_BACKEND"))
	if backend != "redis" {
		backend = "memory"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	ttl := 72 * time.Hour
	if v := os.Getenv("TOKEN_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = time.Duration(n) * time.Hour
		}
	}

	rabbitQueue := os.Getenv("RABBIT_QUEUE")
	if rabbitQueue == "" {
		rabbitQueue = "penpal_events"
	}

	return Config{
		HTTPAddr: httpAddr,

		DBDriver: driver,
		DBDSN:    dsn,

		RedisAddr:       redisAddr,
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,
		RegistryBackend: backend,

		JWTSecret: secret,
		TokenTTL:  ttl,

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: rabbitQueue,

		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS"), []string{"*"}),
	}
}

func defaultDSN(driver string) string {
	switch driver {
	case "mysql":
		return "penpal:penpal@tcp(127.0.0.1:3306)/penpal?charset=utf8mb4&parseTime=true&loc=Local"
	case "sqlite":
		return "penpal.db"
	default:
		return "host=localhost user=user password=password dbname=penpaldb port=5432 sslmode=disable"
	}
}

func splitList(v string, def []string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
