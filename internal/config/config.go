package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port           int
	DatabaseURL    string
	LogLevel       string
	GroqAPIKey     string
	GroqModel      string
	InterviewerURL string
	NatsURL        string
	NatsToken      string
	CORSOrigins    []string
}

func Load() Config {
	return Config{
		Port:           envInt("CANVASS_PORT", 8640),
		DatabaseURL:    envStr("DATABASE_URL", ""),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		GroqAPIKey:     envStr("GROQ_API_KEY", ""),
		GroqModel:      envStr("GROQ_MODEL", "llama-3.3-70b-versatile"),
		InterviewerURL: envStr("INTERVIEWER_URL", "http://localhost:5001"),
		NatsURL:        envStr("NATS_URL", ""),
		NatsToken:      envStr("NATS_TOKEN", ""),
		CORSOrigins:    envList("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envList(key, fallback string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
