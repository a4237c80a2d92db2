package config

import (
	"os"
	"strings"
)

type OAuthCredentials struct {
	ClientID     string
	ClientSecret string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type Config struct {
	MongoURI       string
	RedisURI       string
	Port           string
	Environment    string   // ENV: production, development, etc.
	Host           string   // Public base URL of this backend (OAuth callbacks)
	FrontendURL    string   // Where OAuth callbacks redirect after login
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL

	// CookieCrossSite marks the session cookie SameSite=None + Secure for
	// deployments where frontend and backend live on different sites.
	CookieCrossSite bool

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	SMTP   SMTPConfig
	Google OAuthCredentials
	GitHub OAuthCredentials
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:5173"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	return &Config{
		MongoURI:        getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/staynest")),
		RedisURI:        getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Port:            getEnv("PORT", "3004"),
		Environment:     env,
		Host:            getEnv("HOST", "http://localhost:3004"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
		AllowedOrigins:  allowedOrigins,
		CookieCrossSite: getEnv("COOKIE_CROSS_SITE", "") == "true" || env == "production",

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "Staynest Support <no-reply@staynest.app>"),
		},
		Google: OAuthCredentials{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		},
		GitHub: OAuthCredentials{
			ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		},
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
