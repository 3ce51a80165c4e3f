package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env string

const (
	EnvDev  Env = "dev"
	EnvProd Env = "prod"
)

type Config struct {
	Env      Env
	HTTPAddr string

	DBDriver string
	DBDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins []string

	// aiproxy service
	AIProxyAddr  string
	OpenAIBase   string
	OpenAIKey    string
	OpenAIModel  string
	OpenAITemp   float64
	OpenAITokens int
}

// FromEnv builds the configuration from the process environment, loading an
// optional .env file first.
func FromEnv() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	env := Env(envOr("ENV", string(EnvDev)))
	return Config{
		Env:      env,
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		JWTSecret: envOr("JWT_SECRET", "supersecret-dev-key"),
		JWTTTL:    envDuration("JWT_TTL", 7*24*time.Hour),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000"),

		AIProxyAddr:  envOr("AIPROXY_ADDR", ":8090"),
		OpenAIBase:   envOr("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  envOr("OPENAI_MODEL", "gpt-4"),
		OpenAITemp:   0.7,
		OpenAITokens: 2000,
	}
}

func (c Config) IsProd() bool { return c.Env == EnvProd }

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: bad duration for %s: %v", k, err)
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
