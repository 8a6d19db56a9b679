package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// MinOpenHour is the global floor on opening time. A resource never opens
// earlier than this, whatever the hours sheet says.
const MinOpenHour = 10

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	Business struct {
		SheetID string `yaml:"sheet_id"`
		Name    string `yaml:"name"`
		Email   string `yaml:"email"`
		Phone   string `yaml:"phone"`
		Address string `yaml:"address"`
	} `yaml:"business"`

	Timezone string `yaml:"timezone"`

	Google GoogleConfig `yaml:"google"`

	Sheets struct {
		Calendars string `yaml:"calendars"`
		Hours     string `yaml:"hours"`
		Services  string `yaml:"services"`
		Clients   string `yaml:"clients"`
	} `yaml:"sheets"`

	SMTP struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		User string `yaml:"user"`
		Pass string `yaml:"pass"`
	} `yaml:"smtp"`

	WhatsApp struct {
		APIURL string `yaml:"api_url"`
		APIKey string `yaml:"api_key"`
	} `yaml:"whatsapp"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	WorkingHours struct {
		ForceFixedSchedule  bool `yaml:"force_fixed_schedule"`
		StartHour           int  `yaml:"start_hour"`
		EndHour             int  `yaml:"end_hour"`
		LunchStartHour      int  `yaml:"lunch_start_hour"`
		LunchEndHour        int  `yaml:"lunch_end_hour"`
		SlotIntervalMinutes int  `yaml:"slot_interval_minutes"`

		Saturday struct {
			Enabled   bool `yaml:"enabled"`
			StartHour int  `yaml:"start_hour"`
			EndHour   int  `yaml:"end_hour"`
		} `yaml:"saturday"`

		SundayEnabled bool `yaml:"sunday_enabled"`
	} `yaml:"working_hours"`

	Booking struct {
		LeadTimeMinutes int `yaml:"lead_time_minutes"`
		MaxDaysAhead    int `yaml:"max_days_ahead"`
		PhoneMinLength  int `yaml:"phone_min_length"`
	} `yaml:"booking"`

	Search struct {
		MinSlots     int `yaml:"min_slots"`
		ForwardDays  int `yaml:"forward_days"`
		BackwardDays int `yaml:"backward_days"`
		MaxResults   int `yaml:"max_results"`
	} `yaml:"search"`
}

// GoogleConfig holds the service-account credentials shared by the Sheets
// and Calendar clients.
type GoogleConfig struct {
	ClientEmail string `yaml:"client_email"`
	PrivateKey  string `yaml:"private_key"`
	ProjectID   string `yaml:"project_id"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if cfg.Database.Path != "" {
		if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// Default returns a config with all defaults applied and no file loaded.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Timezone == "" {
		c.Timezone = "America/Mexico_City"
	}
	if c.Sheets.Calendars == "" {
		c.Sheets.Calendars = "CALENDARIOS"
	}
	if c.Sheets.Hours == "" {
		c.Sheets.Hours = "HORARIOS"
	}
	if c.Sheets.Services == "" {
		c.Sheets.Services = "SERVICIOS"
	}
	if c.Sheets.Clients == "" {
		c.Sheets.Clients = "CLIENTES"
	}
	if c.SMTP.Host == "" {
		c.SMTP.Host = "smtp.gmail.com"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}

	wh := &c.WorkingHours
	if wh.StartHour < MinOpenHour {
		wh.StartHour = MinOpenHour
	}
	if wh.EndHour == 0 {
		wh.EndHour = 19
	}
	if wh.LunchStartHour == 0 {
		wh.LunchStartHour = 14
	}
	if wh.LunchEndHour == 0 {
		wh.LunchEndHour = 15
	}
	if wh.SlotIntervalMinutes <= 0 {
		wh.SlotIntervalMinutes = 60
	}
	if wh.Saturday.StartHour == 0 {
		wh.Saturday.Enabled = true
		wh.Saturday.StartHour = 10
	}
	if wh.Saturday.EndHour == 0 {
		wh.Saturday.EndHour = 13
	}

	if c.Booking.LeadTimeMinutes <= 0 {
		c.Booking.LeadTimeMinutes = 60
	}
	if c.Booking.MaxDaysAhead <= 0 {
		c.Booking.MaxDaysAhead = 90
	}
	if c.Booking.PhoneMinLength <= 0 {
		c.Booking.PhoneMinLength = 10
	}

	if c.Search.MinSlots <= 0 {
		c.Search.MinSlots = 2
	}
	if c.Search.ForwardDays <= 0 {
		c.Search.ForwardDays = 14
	}
	if c.Search.BackwardDays <= 0 {
		c.Search.BackwardDays = 7
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 3
	}
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LeadTime is the minimum advance notice required to book "today".
func (c *Config) LeadTime() time.Duration {
	return time.Duration(c.Booking.LeadTimeMinutes) * time.Minute
}

// SlotInterval is the default slot duration, used when a service row does
// not carry its own duration.
func (c *Config) SlotInterval() int {
	return c.WorkingHours.SlotIntervalMinutes
}

// CacheTTL is the Redis TTL for sheet configuration reads.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}
