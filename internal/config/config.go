package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sosodev/duration"

	"github.com/pathakanu/jobMemo/internal/logger"
)

var log = logger.New("config")

// Notification channels understood by NOTIFY_CHANNEL.
const (
	ChannelStub     = "stub"
	ChannelWhatsApp = "whatsapp"
	ChannelTelegram = "telegram"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port                 string
	DatabaseURL          string
	SQLitePath           string
	LocalTimezone        *time.Location
	ReminderInterval     time.Duration
	DispatchTimeout      time.Duration
	AutoReminderQueue    int
	NotifyChannel        string
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string
	TelegramBotToken     string
	OpenAIAPIKey         string
	AdminToken           string
}

// Load reads configuration values and prepares defaults where applicable.
func Load() *Config {
	_ = godotenv.Load()

	timezoneName := getenvDefault("LOCAL_TIMEZONE", "Local")
	location, err := time.LoadLocation(timezoneName)
	if err != nil {
		log.Warn().Err(err).Str("value", timezoneName).Msg("Invalid LOCAL_TIMEZONE, defaulting to system local")
		location = time.Local
	}

	return &Config{
		Port:                 getenvDefault("PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		SQLitePath:           getenvDefault("SQLITE_PATH", "reminders.db"),
		LocalTimezone:        location,
		ReminderInterval:     ParseDurationEnv("REMINDER_INTERVAL", 15*time.Minute),
		DispatchTimeout:      ParseDurationEnv("DISPATCH_TIMEOUT", 30*time.Second),
		AutoReminderQueue:    ParseIntEnv("AUTO_REMINDER_QUEUE", 64),
		NotifyChannel:        strings.ToLower(getenvDefault("NOTIFY_CHANNEL", ChannelStub)),
		TwilioAccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppNumber: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
		TelegramBotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		AdminToken:           os.Getenv("ADMIN_TOKEN"),
	}
}

// Validate reports settings that would prevent the service from delivering notifications.
func (c *Config) Validate() error {
	var errs []error

	if c.ReminderInterval <= 0 {
		errs = append(errs, fmt.Errorf("REMINDER_INTERVAL must be positive, got %s", c.ReminderInterval))
	}
	if c.DispatchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("DISPATCH_TIMEOUT must be positive, got %s", c.DispatchTimeout))
	}

	switch c.NotifyChannel {
	case ChannelStub:
	case ChannelWhatsApp:
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioWhatsAppNumber == "" {
			errs = append(errs, errors.New("whatsapp channel requires TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_WHATSAPP_NUMBER"))
		}
	case ChannelTelegram:
		if c.TelegramBotToken == "" {
			errs = append(errs, errors.New("telegram channel requires TELEGRAM_BOT_TOKEN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFY_CHANNEL %q", c.NotifyChannel))
	}

	return errors.Join(errs...)
}

func getenvDefault(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	return value
}

// ParseIntEnv returns the integer value for an environment variable or the provided default.
func ParseIntEnv(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("value", value).Msg("Unable to parse integer, using default")
		return def
	}
	return parsed
}

// ParseDurationEnv accepts Go durations ("15m") as well as ISO-8601 durations ("PT15M").
func ParseDurationEnv(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}

	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}

	iso, err := duration.Parse(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("value", value).Msg("Unable to parse duration, using default")
		return def
	}
	return iso.ToTimeDuration()
}
