package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the fully resolved runtime configuration. Durations in the
// config file are Go duration strings (e.g. "30s", "720h") and are parsed
// during Load.
type Config struct {
	DataDir string

	Logging LoggingConfig
	Storage StorageConfig
	Email   EmailConfig
	Limits  LimitsConfig
	Scrape  ScrapeConfig

	Notifier   NotifierConfig
	Automation AutomationConfig
}

type LoggingConfig struct {
	Level       string
	Console     bool
	FileEnabled bool
	FilePath    string
}

type StorageConfig struct {
	Driver      string // "file" (default) or "sqlite"
	Path        string
	BusyTimeout time.Duration // sqlite only
}

// EmailConfig carries SMTP settings. Username and Password always come from
// the environment (SMTP_USERNAME / SMTP_PASSWORD) so the config file stays
// committable.
type EmailConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	ReplyTo   string
	BCC       string
}

// LimitsConfig binds the outreach throttling policy.
type LimitsConfig struct {
	// Delay between consecutive dispatches, sampled uniformly in
	// [MinSendDelay, MaxSendDelay].
	MinSendDelay time.Duration
	MaxSendDelay time.Duration

	MaxAttemptsPerContact int
	MinPerOrg             int
	MaxPerOrg             int

	ContactCooldown time.Duration // per-contact re-send cooldown
	DomainCooldown  time.Duration // per-domain successful-send cooldown
}

// ScrapeConfig paces the discovery pass.
type ScrapeConfig struct {
	// Delay between targets, sampled uniformly in [MinDelay, MaxDelay].
	MinDelay time.Duration
	MaxDelay time.Duration

	Cooldown       time.Duration // per-target re-scrape cooldown
	HTTPTimeout    time.Duration
	RequestsPerSec float64
	MaxPerTarget   int
	UserAgent      string
}

// NotifierConfig controls the optional Telegram run-summary notifier.
// Token comes from the environment (TELEGRAM_BOT_TOKEN).
type NotifierConfig struct {
	Enabled bool
	Token   string
	ChatID  int64
}

// AutomationConfig controls the `automate` daemon.
type AutomationConfig struct {
	Schedule    string // cron expression for the daily run
	OptOutInbox string // watched file of "email,reason" lines
}

// fileConfig is the on-disk shape. Durations are strings.
type fileConfig struct {
	DataDir string `json:"data_dir,omitempty"`

	Logging struct {
		Level   string `json:"level,omitempty"`
		Console *bool  `json:"console,omitempty"`
		File    struct {
			Enabled bool   `json:"enabled,omitempty"`
			Path    string `json:"path,omitempty"`
		} `json:"file,omitempty"`
	} `json:"logging,omitempty"`

	Storage struct {
		Driver      string `json:"driver,omitempty"`
		Path        string `json:"path,omitempty"`
		BusyTimeout string `json:"busy_timeout,omitempty"`
	} `json:"storage,omitempty"`

	Email struct {
		Host      string `json:"host,omitempty"`
		Port      int    `json:"port,omitempty"`
		FromEmail string `json:"from_email,omitempty"`
		FromName  string `json:"from_name,omitempty"`
		ReplyTo   string `json:"reply_to,omitempty"`
		BCC       string `json:"bcc,omitempty"`
	} `json:"email,omitempty"`

	RateLimits struct {
		MinSendDelay    string `json:"min_send_delay,omitempty"`
		MaxSendDelay    string `json:"max_send_delay,omitempty"`
		MaxPerContact   int    `json:"max_per_contact,omitempty"`
		MinPerOrg       int    `json:"min_per_org,omitempty"`
		MaxPerOrg       int    `json:"max_per_org,omitempty"`
		ContactCooldown string `json:"contact_cooldown,omitempty"`
		DomainCooldown  string `json:"domain_cooldown,omitempty"`
	} `json:"rate_limits,omitempty"`

	Scrape struct {
		MinDelay       string  `json:"min_delay,omitempty"`
		MaxDelay       string  `json:"max_delay,omitempty"`
		Cooldown       string  `json:"cooldown,omitempty"`
		HTTPTimeout    string  `json:"http_timeout,omitempty"`
		RequestsPerSec float64 `json:"requests_per_sec,omitempty"`
		MaxPerTarget   int     `json:"max_per_target,omitempty"`
		UserAgent      string  `json:"user_agent,omitempty"`
	} `json:"scrape,omitempty"`

	Notifier struct {
		Enabled bool  `json:"enabled,omitempty"`
		ChatID  int64 `json:"chat_id,omitempty"`
	} `json:"notifier,omitempty"`

	Automation struct {
		Schedule    string `json:"schedule,omitempty"`
		OptOutInbox string `json:"optout_inbox,omitempty"`
	} `json:"automation,omitempty"`
}

// Load reads, strictly decodes, and resolves the config file. A missing file
// is not an error: defaults plus environment overrides apply.
func Load(path string) (*Config, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		jb, cerr := coerceToJSONBytes(path, b)
		if cerr != nil {
			return nil, fmt.Errorf("config %s: %w", path, cerr)
		}
		dec := json.NewDecoder(bytes.NewReader(jb))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fc); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		// reject trailing tokens (e.g. concatenated JSON)
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			if err == nil {
				return nil, fmt.Errorf("config %s: trailing data", path)
			}
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	default:
		return nil, err
	}
	return resolve(&fc)
}

func resolve(fc *fileConfig) (*Config, error) {
	cfg := &Config{}

	cfg.DataDir = orDefault(fc.DataDir, "./outreach_data")

	cfg.Logging.Level = orDefault(fc.Logging.Level, "info")
	cfg.Logging.Console = true
	if fc.Logging.Console != nil {
		cfg.Logging.Console = *fc.Logging.Console
	}
	cfg.Logging.FileEnabled = fc.Logging.File.Enabled
	cfg.Logging.FilePath = fc.Logging.File.Path

	cfg.Storage.Driver = orDefault(strings.ToLower(strings.TrimSpace(fc.Storage.Driver)), "file")
	cfg.Storage.Path = fc.Storage.Path
	var err error
	if cfg.Storage.BusyTimeout, err = parseDurationField("storage.busy_timeout", fc.Storage.BusyTimeout); err != nil {
		return nil, err
	}

	cfg.Email.Host = envOr("SMTP_HOST", orDefault(fc.Email.Host, "smtp-relay.brevo.com"))
	cfg.Email.Port = fc.Email.Port
	if p := os.Getenv("SMTP_PORT"); p != "" {
		n, perr := strconv.Atoi(p)
		if perr != nil {
			return nil, fmt.Errorf("SMTP_PORT: %w", perr)
		}
		cfg.Email.Port = n
	}
	if cfg.Email.Port == 0 {
		cfg.Email.Port = 587
	}
	cfg.Email.Username = os.Getenv("SMTP_USERNAME")
	cfg.Email.Password = os.Getenv("SMTP_PASSWORD")
	cfg.Email.FromEmail = envOr("FROM_EMAIL", orDefault(fc.Email.FromEmail, "team@open.build"))
	cfg.Email.FromName = envOr("FROM_NAME", orDefault(fc.Email.FromName, "Open Build Foundry Team"))
	cfg.Email.ReplyTo = envOr("REPLY_TO_EMAIL", orDefault(fc.Email.ReplyTo, cfg.Email.FromEmail))
	cfg.Email.BCC = envOr("BCC_EMAIL", fc.Email.BCC)

	rl := fc.RateLimits
	if cfg.Limits.MinSendDelay, err = parseDurationOrDefault("rate_limits.min_send_delay", rl.MinSendDelay, 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Limits.MaxSendDelay, err = parseDurationOrDefault("rate_limits.max_send_delay", rl.MaxSendDelay, 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.Limits.MaxSendDelay < cfg.Limits.MinSendDelay {
		return nil, fmt.Errorf("rate_limits: max_send_delay %v < min_send_delay %v", cfg.Limits.MaxSendDelay, cfg.Limits.MinSendDelay)
	}
	cfg.Limits.MaxAttemptsPerContact = orDefaultInt(rl.MaxPerContact, 4)
	cfg.Limits.MinPerOrg = orDefaultInt(rl.MinPerOrg, 2)
	cfg.Limits.MaxPerOrg = orDefaultInt(rl.MaxPerOrg, 4)
	if cfg.Limits.MaxPerOrg < cfg.Limits.MinPerOrg {
		return nil, fmt.Errorf("rate_limits: max_per_org %d < min_per_org %d", cfg.Limits.MaxPerOrg, cfg.Limits.MinPerOrg)
	}
	if cfg.Limits.ContactCooldown, err = parseDurationOrDefault("rate_limits.contact_cooldown", rl.ContactCooldown, 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Limits.DomainCooldown, err = parseDurationOrDefault("rate_limits.domain_cooldown", rl.DomainCooldown, 7*24*time.Hour); err != nil {
		return nil, err
	}

	sc := fc.Scrape
	if cfg.Scrape.MinDelay, err = parseDurationOrDefault("scrape.min_delay", sc.MinDelay, 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Scrape.MaxDelay, err = parseDurationOrDefault("scrape.max_delay", sc.MaxDelay, 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.Scrape.MaxDelay < cfg.Scrape.MinDelay {
		return nil, fmt.Errorf("scrape: max_delay %v < min_delay %v", cfg.Scrape.MaxDelay, cfg.Scrape.MinDelay)
	}
	if cfg.Scrape.Cooldown, err = parseDurationOrDefault("scrape.cooldown", sc.Cooldown, 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Scrape.HTTPTimeout, err = parseDurationOrDefault("scrape.http_timeout", sc.HTTPTimeout, 15*time.Second); err != nil {
		return nil, err
	}
	cfg.Scrape.RequestsPerSec = sc.RequestsPerSec
	if cfg.Scrape.RequestsPerSec <= 0 {
		cfg.Scrape.RequestsPerSec = 0.25
	}
	cfg.Scrape.MaxPerTarget = orDefaultInt(sc.MaxPerTarget, 4)
	cfg.Scrape.UserAgent = orDefault(sc.UserAgent, defaultUserAgent)

	cfg.Notifier.Enabled = fc.Notifier.Enabled
	cfg.Notifier.ChatID = fc.Notifier.ChatID
	cfg.Notifier.Token = os.Getenv("TELEGRAM_BOT_TOKEN")

	cfg.Automation.Schedule = orDefault(fc.Automation.Schedule, "0 9 * * *")
	cfg.Automation.OptOutInbox = fc.Automation.OptOutInbox

	return cfg, nil
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
