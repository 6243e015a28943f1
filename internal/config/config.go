package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// DefaultAgentURL is the development fallback for the upstream agent.
// It must be overridden with AGENT_API_URL in production.
const DefaultAgentURL = "https://51c8-103-7-81-242.ngrok-free.app/message"

// Config holds the application configuration
type Config struct {
	Port        string
	DatabaseURL string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	AgentURL       string
	AgentStrictEOF bool

	GraphTenantID     string
	GraphClientID     string
	GraphClientSecret string
	SharePointSiteID  string
	SharePointDriveID string

	Production bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:     "8080", // default port
		AgentURL: DefaultAgentURL,
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	// DATABASE_URL takes precedence; otherwise assemble the DSN from the
	// discrete POSTGRES_* variables.
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.DatabaseURL = dsn
	} else {
		dsn, err := postgresURLFromEnv()
		if err != nil {
			return nil, err
		}
		cfg.DatabaseURL = dsn
	}

	cfg.SMTPHost = getenvDefault("SMTP_HOST", "smtp.gmail.com")
	cfg.SMTPPort = 587
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", raw, err)
		}
		cfg.SMTPPort = port
	}
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPass = os.Getenv("SMTP_PASS")
	cfg.SMTPFrom = os.Getenv("SMTP_FROM")
	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}

	if u := os.Getenv("AGENT_API_URL"); u != "" {
		cfg.AgentURL = u
	}
	cfg.AgentStrictEOF = os.Getenv("AGENT_STRICT_EOF") == "true"

	cfg.GraphTenantID = os.Getenv("GRAPH_TENANT_ID")
	cfg.GraphClientID = os.Getenv("GRAPH_CLIENT_ID")
	cfg.GraphClientSecret = os.Getenv("GRAPH_CLIENT_SECRET")
	cfg.SharePointSiteID = os.Getenv("SHAREPOINT_SITE_ID")
	cfg.SharePointDriveID = os.Getenv("SHAREPOINT_DRIVE_ID")

	cfg.Production = os.Getenv("APP_ENV") == "production"

	return cfg, nil
}

// HasGraph reports whether the document collaborator is configured.
func (c *Config) HasGraph() bool {
	return c.GraphTenantID != "" && c.GraphClientID != "" && c.GraphClientSecret != "" &&
		c.SharePointSiteID != "" && c.SharePointDriveID != ""
}

func postgresURLFromEnv() (string, error) {
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return "", fmt.Errorf("DATABASE_URL or POSTGRES_HOST environment variable is required")
	}
	port := getenvDefault("POSTGRES_PORT", "5432")
	dbName := os.Getenv("POSTGRES_DATABASE")
	if dbName == "" {
		return "", fmt.Errorf("POSTGRES_DATABASE environment variable is required")
	}
	user := os.Getenv("POSTGRES_USER")
	pass := os.Getenv("POSTGRES_PASSWORD")

	u := url.URL{
		Scheme: "postgres",
		Host:   host + ":" + port,
		Path:   "/" + dbName,
	}
	if user != "" {
		u.User = url.UserPassword(user, pass)
	}
	q := u.Query()
	q.Set("sslmode", getenvDefault("POSTGRES_SSLMODE", "require"))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
