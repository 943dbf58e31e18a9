// Package config provides YAML-based configuration loading for retromgr.
//
// A configuration starts from the base settings returned by Default, is
// overridden by the values present in the YAML file, and finally by the
// overlay of the selected profile (see Profiles).
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the top-level retromgr configuration, loaded from retromgr.yaml.
type Config struct {
	Profile        string           `yaml:"profile"`
	Site           SiteConfig       `yaml:"site"`
	LogFilePath    string           `yaml:"log_file_path"`
	AssetsPackaged bool             `yaml:"assets_packaged"`
	AssetsDir      string           `yaml:"assets_dir"`
	Paths          PathsConfig      `yaml:"paths"`
	Database       DatabaseConfig   `yaml:"database"`
	Monitoring     MonitoringConfig `yaml:"monitoring"`
	Notify         NotifyConfig     `yaml:"notify"`
	Logging        LoggingConfig    `yaml:"logging"`
}

// SiteConfig describes how the manager publishes itself on the network.
type SiteConfig struct {
	Name string `yaml:"name"`
	// IP is an address or hostname. Empty means detect it from the local
	// network interfaces.
	IP string `yaml:"ip"`
	// Port is published in the site URL. Empty means no port segment, the
	// server is then reachable on port 80.
	Port string `yaml:"port"`
}

// PathsConfig locates the appliance files the manager works on.
type PathsConfig struct {
	Roms         string `yaml:"roms"`
	Bios         string `yaml:"bios"`
	RecalboxConf string `yaml:"recalbox_conf"`
	ESSettings   string `yaml:"es_settings"`
	AudioConf    string `yaml:"audio_conf"`
	Share        string `yaml:"share"`
}

// DatabaseConfig holds the connection settings for upload history and
// monitoring samples.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// MonitoringConfig controls the periodic health snapshots.
type MonitoringConfig struct {
	Schedule   string        `yaml:"schedule"`
	Retention  time.Duration `yaml:"retention"`
	TempAlertC float64       `yaml:"temp_alert_c"`
	ProcRoot   string        `yaml:"proc_root"`
}

// NotifyConfig holds chat webhook targets for alerts.
type NotifyConfig struct {
	SlackWebhookURL     string `yaml:"slack_webhook_url"`
	DiscordWebhookID    string `yaml:"discord_webhook_id"`
	DiscordWebhookToken string `yaml:"discord_webhook_token"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CronParser accepts standard 5-field cron expressions.
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Default returns the base settings.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Name: "Recalbox Manager",
			Port: "8001",
		},
		LogFilePath: "/root/recalbox.log",
		Paths: PathsConfig{
			Roms:         "/recalbox/share/roms",
			Bios:         "/recalbox/share/bios",
			RecalboxConf: "/recalbox/share/system/recalbox.conf",
			ESSettings:   "/recalbox/share/system/.emulationstation/es_settings.cfg",
			AudioConf:    "/recalbox/share/system/configs/retroarch/retroarchcustom.cfg",
			Share:        "/recalbox/share",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "retromgr.db",
			Host:   "127.0.0.1",
			Port:   3306,
			Name:   "retromgr",
			User:   "root",
		},
		Monitoring: MonitoringConfig{
			Schedule:   "*/5 * * * *",
			Retention:  24 * time.Hour,
			TempAlertC: 80,
			ProcRoot:   "/",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML config file from path and returns a validated Config.
// An empty path yields the validated base settings.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes over the base settings, applies the selected
// profile and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if cfg.Profile != "" {
		if err := cfg.ApplyProfile(cfg.Profile); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Host returns the configured IP or hostname, or the first non-loopback IPv4
// address of this machine, or "localhost" when none is found.
func (s SiteConfig) Host() string {
	if s.IP != "" {
		return s.IP
	}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "localhost"
}

// PublicURL is the address users type in their browser.
func (s SiteConfig) PublicURL() string {
	host := s.Host()
	if s.Port == "" {
		return "http://" + host + "/"
	}
	return "http://" + net.JoinHostPort(host, s.Port) + "/"
}

// ListenAddr returns the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	if c.Site.Port == "" {
		return ":80"
	}
	return ":" + c.Site.Port
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Site.Name == "" {
		errs = append(errs, "site.name is required")
	}
	if c.Site.Port != "" {
		if p, err := strconv.Atoi(c.Site.Port); err != nil || p < 1 || p > 65535 {
			errs = append(errs, fmt.Sprintf("site.port %q is not a valid port", c.Site.Port))
		}
	}
	if c.LogFilePath == "" {
		errs = append(errs, "log_file_path is required")
	}
	if c.Paths.Roms == "" {
		errs = append(errs, "paths.roms is required")
	}
	if c.Paths.Bios == "" {
		errs = append(errs, "paths.bios is required")
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for sqlite")
		}
	case "mysql":
		if c.Database.Name == "" {
			errs = append(errs, "database.name is required for mysql")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (sqlite, mysql)", c.Database.Driver))
	}
	if _, err := CronParser.Parse(c.Monitoring.Schedule); err != nil {
		errs = append(errs, fmt.Sprintf("monitoring.schedule: %v", err))
	}
	if c.Monitoring.Retention <= 0 {
		errs = append(errs, "monitoring.retention must be positive")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q is not supported (json, console)", c.Logging.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
