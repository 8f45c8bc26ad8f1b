package config

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "ISS_NOTIFIER_CONFIG"
	observerLatEnv     = "OBSERVER_LAT"
	observerLngEnv     = "OBSERVER_LNG"
	smtpHostEnv        = "SMTP_HOST"
	smtpPortEnv        = "SMTP_PORT"
	smtpUsernameEnv    = "SMTP_USERNAME"
	smtpPasswordEnv    = "SMTP_PASSWORD"
	notifyFromEnv      = "NOTIFY_FROM"
	notifyRecipientEnv = "NOTIFY_RECIPIENT"
	logLevelEnv        = "LOG_LEVEL"
	metricsAddrEnv     = "METRICS_ADDR"
	sunProviderEnv     = "SUN_TIMES_PROVIDER"
)

const (
	ProviderAPI   = "api"
	ProviderLocal = "local"
)

// Config holds every setting the notifier needs; it is built once at start-up.
type Config struct {
	Observer ObserverConfig `yaml:"observer"`
	Position PositionConfig `yaml:"position"`
	SunTimes SunTimesConfig `yaml:"sunTimes"`
	Mail     MailConfig     `yaml:"mail"`
	Loop     LoopConfig     `yaml:"loop"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ObserverConfig is the fixed location being watched.
type ObserverConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// PositionConfig points at the satellite-tracking endpoint.
type PositionConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SunTimesConfig selects how sunrise and sunset are obtained.
type SunTimesConfig struct {
	Provider  string        `yaml:"provider"`
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	HourClock string        `yaml:"hourClock"`
}

// MailConfig wires the SMTP relay and the alert message.
type MailConfig struct {
	Host      string        `yaml:"host"`
	Port      int           `yaml:"port"`
	Username  string        `yaml:"username"`
	Password  string        `yaml:"password"`
	StartTLS  bool          `yaml:"startTLS"`
	Timeout   time.Duration `yaml:"timeout"`
	From      string        `yaml:"from"`
	Recipient string        `yaml:"recipient"`
	Subject   string        `yaml:"subject"`
	Body      string        `yaml:"body"`
}

// LoopConfig controls the polling cadence.
type LoopConfig struct {
	ToleranceDegrees float64       `yaml:"toleranceDegrees"`
	PollInterval     time.Duration `yaml:"pollInterval"`
	Cooldown         time.Duration `yaml:"cooldown"`
	RetryDelay       time.Duration `yaml:"retryDelay"`
}

// LoggingConfig sets the minimum log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig enables the Prometheus endpoint when ListenAddr is set.
type MetricsConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: cannot load .env: %v", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := parse(raw, cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = fileCfg
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// parse decodes raw YAML over base so absent keys keep their defaults.
func parse(raw []byte, base Config) (Config, error) {
	cfg := base
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return base, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v, ok := envFloat(observerLatEnv); ok {
		c.Observer.Latitude = v
	}
	if v, ok := envFloat(observerLngEnv); ok {
		c.Observer.Longitude = v
	}

	if v := os.Getenv(smtpHostEnv); v != "" {
		c.Mail.Host = v
	}
	if v := os.Getenv(smtpPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Mail.Port = port
		} else {
			log.Printf("config: ignoring %s=%q: %v", smtpPortEnv, v, err)
		}
	}
	if v := os.Getenv(smtpUsernameEnv); v != "" {
		c.Mail.Username = v
	}
	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Mail.Password = v
	}
	if v := os.Getenv(notifyFromEnv); v != "" {
		c.Mail.From = v
	}
	if v := os.Getenv(notifyRecipientEnv); v != "" {
		c.Mail.Recipient = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(metricsAddrEnv); v != "" {
		c.Metrics.ListenAddr = v
	}
	if v := os.Getenv(sunProviderEnv); v != "" {
		c.SunTimes.Provider = strings.ToLower(v)
	}

	if c.Mail.From == "" {
		c.Mail.From = c.Mail.Username
	}
}

func envFloat(key string) (float64, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config: ignoring %s=%q: %v", key, v, err)
		return 0, false
	}
	return f, true
}

// Validate rejects settings the notifier cannot run with.
func (c Config) Validate() error {
	var errs []error

	if math.IsNaN(c.Observer.Latitude) || c.Observer.Latitude < -90 || c.Observer.Latitude > 90 {
		errs = append(errs, fmt.Errorf("observer latitude %v out of range", c.Observer.Latitude))
	}
	if math.IsNaN(c.Observer.Longitude) || c.Observer.Longitude < -180 || c.Observer.Longitude > 180 {
		errs = append(errs, fmt.Errorf("observer longitude %v out of range", c.Observer.Longitude))
	}

	if !(c.Loop.ToleranceDegrees > 0) {
		errs = append(errs, fmt.Errorf("loop tolerance must be positive"))
	}
	if c.Loop.PollInterval <= 0 || c.Loop.Cooldown <= 0 || c.Loop.RetryDelay <= 0 {
		errs = append(errs, fmt.Errorf("loop intervals must be positive"))
	}

	switch c.SunTimes.Provider {
	case ProviderAPI, ProviderLocal:
	default:
		errs = append(errs, fmt.Errorf("unknown sun times provider %q", c.SunTimes.Provider))
	}
	switch strings.ToLower(c.SunTimes.HourClock) {
	case "", "local", "utc":
	default:
		errs = append(errs, fmt.Errorf("unknown hour clock %q", c.SunTimes.HourClock))
	}

	if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
		errs = append(errs, fmt.Errorf("smtp port %d out of range", c.Mail.Port))
	}
	if c.Mail.Username == "" || c.Mail.Password == "" {
		errs = append(errs, fmt.Errorf("smtp credentials are not set (%s, %s)", smtpUsernameEnv, smtpPasswordEnv))
	}
	if c.Mail.Recipient == "" {
		errs = append(errs, fmt.Errorf("mail recipient is not set (%s)", notifyRecipientEnv))
	}
	// net/smtp refuses PLAIN auth in the clear unless the relay is loopback.
	if !c.Mail.StartTLS && !isLoopbackHost(c.Mail.Host) {
		errs = append(errs, fmt.Errorf("startTLS may only be disabled for a loopback relay, got %q", c.Mail.Host))
	}

	return errors.Join(errs...)
}

func isLoopbackHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

func defaultConfig() Config {
	return Config{
		Observer: ObserverConfig{Latitude: 20.593683, Longitude: 78.962883},
		Position: PositionConfig{
			URL:     "http://api.open-notify.org/iss-now.json",
			Timeout: 10 * time.Second,
		},
		SunTimes: SunTimesConfig{
			Provider:  ProviderAPI,
			URL:       "https://api.sunrise-sunset.org/json",
			Timeout:   10 * time.Second,
			HourClock: "local",
		},
		Mail: MailConfig{
			Host:     "smtp.gmail.com",
			Port:     587,
			StartTLS: true,
			Timeout:  30 * time.Second,
			Subject:  "Look up in the sky!",
			Body:     "The ISS is flying above you right now!",
		},
		Loop: LoopConfig{
			ToleranceDegrees: 5,
			PollInterval:     60 * time.Second,
			Cooldown:         600 * time.Second,
			RetryDelay:       60 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
