package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/gommon/bytes"

	"storybook/pkg/ids"
)

const (
	ServiceName = "Fable Tales Story API"
	Version     = "1.0.0"

	defaultPort      = 8080
	defaultBodyLimit = "1M"
)

// Config is read from the environment, after godotenv has loaded any .env
// file.
type Config struct {
	Port        int
	LogLevel    string
	IDScheme    string
	CORSOrigins []string
	// BodyLimit is an echo size string such as "512K" or "2M".
	BodyLimit string
}

func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Port:        defaultPort,
		LogLevel:    "info",
		IDScheme:    string(ids.SchemeUUID),
		CORSOrigins: []string{"*"},
		BodyLimit:   defaultBodyLimit,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("STORY_ID_SCHEME"); v != "" {
		if _, err := ids.ByScheme(v); err != nil {
			return Config{}, fmt.Errorf("STORY_ID_SCHEME: %w", err)
		}
		cfg.IDScheme = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}
	if v := os.Getenv("MAX_PAYLOAD"); v != "" {
		n, err := bytes.Parse(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid MAX_PAYLOAD %q", v)
		}
		cfg.BodyLimit = v
	}

	return cfg, nil
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
