package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults mirror the original deployment: teams of three, one of each
// core hackathon skill, a matching pass every two hours.
const (
	defaultTeamSize            = 3
	defaultRequiredSkills      = "Frontend Development,Backend Development,Design"
	defaultExperienceLevels    = "1 year,2 years,More than 2 years"
	defaultMatchInterval       = 2 * time.Hour
	defaultConfirmationTimeout = time.Hour
	defaultHTTPAddr            = ":8080"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Env      string
	HTTPAddr string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string

	TeamSize            int
	RequiredSkills      []string
	ExperienceLevels    []string
	MatchInterval       time.Duration
	ConfirmationTimeout time.Duration
}

// Load reads the environment (and .env if present) and validates the team
// formation settings. Validation failures here are configuration errors and
// abort startup; nothing re-validates at call time.
func Load() (*Config, error) {
	// .env is a development convenience, absence is fine.
	_ = godotenv.Load()

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPAddr:          getEnv("HTTP_ADDR", defaultHTTPAddr),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBName:            getEnv("DB_NAME", "teammatch"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		RequiredSkills:    splitList(getEnv("REQUIRED_SKILLS", defaultRequiredSkills)),
		ExperienceLevels:  splitList(getEnv("EXPERIENCE_LEVELS", defaultExperienceLevels)),
	}

	var err error
	if cfg.TeamSize, err = getInt("TEAM_SIZE", defaultTeamSize); err != nil {
		return nil, err
	}
	if cfg.MatchInterval, err = getDuration("MATCH_INTERVAL", defaultMatchInterval); err != nil {
		return nil, err
	}
	if cfg.ConfirmationTimeout, err = getDuration("CONFIRMATION_TIMEOUT", defaultConfirmationTimeout); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	if c.TeamSize < 1 {
		return fmt.Errorf("config: TEAM_SIZE must be positive, got %d", c.TeamSize)
	}
	if len(c.RequiredSkills) != c.TeamSize {
		return fmt.Errorf("config: REQUIRED_SKILLS has %d entries, TEAM_SIZE is %d", len(c.RequiredSkills), c.TeamSize)
	}
	seen := make(map[string]bool, len(c.RequiredSkills))
	for _, s := range c.RequiredSkills {
		if s == "" {
			return fmt.Errorf("config: REQUIRED_SKILLS contains an empty entry")
		}
		if seen[s] {
			return fmt.Errorf("config: duplicate required skill %q", s)
		}
		seen[s] = true
	}
	if len(c.ExperienceLevels) == 0 {
		return fmt.Errorf("config: EXPERIENCE_LEVELS must not be empty")
	}
	if c.MatchInterval <= 0 {
		return fmt.Errorf("config: MATCH_INTERVAL must be positive")
	}
	if c.ConfirmationTimeout < 0 {
		return fmt.Errorf("config: CONFIRMATION_TIMEOUT must not be negative")
	}
	return nil
}

// DSN builds the MySQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// ValidSkill reports whether skill is one of the configured required skills.
func (c *Config) ValidSkill(skill string) bool {
	for _, s := range c.RequiredSkills {
		if s == skill {
			return true
		}
	}
	return false
}

// ValidExperience reports whether level is a configured experience level.
func (c *Config) ValidExperience(level string) bool {
	for _, l := range c.ExperienceLevels {
		if l == level {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
