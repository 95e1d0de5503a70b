package config

import (
	"log"
	"strings"
	"time"

	"buyback-pos/internal/models"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Database DatabaseConfig
	Defaults DefaultsConfig
	Hardware HardwareProfile
	Site     models.SiteInfo
}

type ServerConfig struct {
	Port               string
	Env                string
	JWTSecret          string `mapstructure:"jwt_secret"`
	JWTExpirationHours int    `mapstructure:"jwt_expiration_hours"`
}

// BackendConfig points at the buy-back REST service that owns all business data.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	URL      string
}

type DefaultsConfig struct {
	AdminPassword   string `mapstructure:"admin_password"`
	AdminEmployeeID string `mapstructure:"admin_employee_id"`
	PerPage         int    `mapstructure:"per_page"`
}

const (
	defaultPort    = "3000"
	defaultAPIBase = "http://localhost:8080"
	defaultTimeout = 10 * time.Second
	defaultPerPage = 20
)

// LoadConfig reads .env, the process environment and config/config.toml.
func LoadConfig() *Config {
	return Load(".env", "config/config.toml")
}

// Load is LoadConfig with explicit file locations. Missing files are not fatal.
func Load(envFile, siteFile string) *Config {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: %s not found, checking environment variables: %v", envFile, err)
	}

	v.AutomaticEnv()

	v.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("API_BASE")

	v.SetDefault("SERVER_PORT", defaultPort)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("JWT_EXPIRATION_HOURS", 12)
	v.SetDefault("API_BASE", defaultAPIBase)
	v.SetDefault("API_TIMEOUT_MS", int(defaultTimeout/time.Millisecond))
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("ADMIN_EMPLOYEE_ID", "ADM001")
	v.SetDefault("PER_PAGE", defaultPerPage)
	v.SetDefault("HARDWARE_PROFILE", "config/hardware.yaml")

	cfg := &Config{
		Server: ServerConfig{
			Port:               v.GetString("SERVER_PORT"),
			Env:                v.GetString("SERVER_ENV"),
			JWTSecret:          v.GetString("JWT_SECRET"),
			JWTExpirationHours: v.GetInt("JWT_EXPIRATION_HOURS"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(v.GetString("API_BASE"), "/"),
			Timeout: time.Duration(v.GetInt("API_TIMEOUT_MS")) * time.Millisecond,
		},
		Database: DatabaseConfig{
			Driver:   v.GetString("DB_DRIVER"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			URL:      v.GetString("DATABASE_URL"),
		},
		Defaults: DefaultsConfig{
			AdminPassword:   v.GetString("ADMIN_PASSWORD"),
			AdminEmployeeID: v.GetString("ADMIN_EMPLOYEE_ID"),
			PerPage:         v.GetInt("PER_PAGE"),
		},
	}

	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = defaultAPIBase
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = defaultTimeout
	}
	if cfg.Defaults.PerPage <= 0 {
		cfg.Defaults.PerPage = defaultPerPage
	}

	hw, err := LoadHardwareProfile(v.GetString("HARDWARE_PROFILE"))
	if err != nil {
		log.Printf("Warning: hardware profile not loaded, using defaults: %v", err)
	}
	cfg.Hardware = hw

	// Site info for the sidebar and receipt header
	siteViper := viper.New()
	siteViper.SetConfigFile(siteFile)
	siteViper.SetConfigType("toml")
	if err := siteViper.ReadInConfig(); err != nil {
		log.Printf("Warning: %s not found, using empty site info: %v", siteFile, err)
	} else {
		if err := siteViper.UnmarshalKey("site", &cfg.Site); err != nil {
			log.Printf("Error: Failed to unmarshal site info from TOML: %v", err)
		}
	}

	log.Printf("Configuration loaded successfully:")
	log.Printf("- Server Port: %s", cfg.Server.Port)
	log.Printf("- Server Env: %s", cfg.Server.Env)
	log.Printf("- JWT Secret: %s", setOrNot(cfg.Server.JWTSecret))
	log.Printf("- Backend API: %s (timeout %s)", cfg.Backend.BaseURL, cfg.Backend.Timeout)
	log.Printf("- Database Driver: %s", cfg.Database.Driver)
	log.Printf("- Database Host: %s", cfg.Database.Host)
	log.Printf("- Database Name: %s", cfg.Database.Name)
	log.Printf("- Database URL: %s", setOrNot(cfg.Database.URL))
	log.Printf("- Shop Name: %s", cfg.Site.Name)

	return cfg
}

// IsProduction reports whether cookies should be marked secure.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

func setOrNot(s string) string {
	if s != "" {
		return "SET"
	}
	return "NOT SET"
}
