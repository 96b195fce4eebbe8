package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// New returns the configuration read from the environment. Missing or malformed required variables
// are all reported at once.
func New() (Config, error) {
	env := &environment{}

	config := Config{
		Environment:    env.optional("ENVIRONMENT", "production"),
		BasePath:       env.optional("BASE_PATH", ""),
		Port:           env.optionalInt("HTTP_PORT", 8080),
		AllowedOrigins: env.optionalList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		Postgresql: Postgresql{
			Host:         env.require("DATABASE_HOST"),
			Port:         env.requireInt("DATABASE_PORT"),
			Username:     env.require("DATABASE_USERNAME"),
			Password:     env.require("DATABASE_PASSWORD"),
			DatabaseName: env.require("DATABASE_NAME"),
		},
		Authentication: Authentication{
			Secret: env.require("AUTHENTICATION_SECRET"),
		},
		Notification: Notification{
			Interval:  env.optionalDuration("NOTIFICATION_INTERVAL", 30*time.Second),
			Offsets:   env.optionalMinutes("NOTIFICATION_OFFSETS", []time.Duration{0, time.Minute, 2 * time.Minute}),
			Retention: env.optionalDuration("NOTIFICATION_RETENTION", 24*time.Hour),
		},
		Presence: Presence{
			QueueSize: env.optionalInt("PRESENCE_QUEUE_SIZE", 32),
		},
		Recurrence: Recurrence{
			CalendarAware: env.optionalBool("RECURRENCE_CALENDAR_AWARE", false),
		},
		Tracing: Tracing{
			JaegerEndpoint: env.optional("JAEGER_ENDPOINT", ""),
		},
		Logging: Logging{
			Level:       env.optionalLevel("LOG_LEVEL", slog.LevelInfo),
			PrettyPrint: env.optionalBool("LOG_PRETTY", false),
		},
	}

	return config, errors.Join(env.errs...)
}

type Config struct {
	Environment    string
	BasePath       string
	Port           int
	AllowedOrigins []string
	Postgresql     Postgresql
	Authentication Authentication
	Notification   Notification
	Presence       Presence
	Recurrence     Recurrence
	Tracing        Tracing
	Logging        Logging
}

type Postgresql struct {
	Host         string
	Port         int
	Username     string
	Password     string
	DatabaseName string
}

// Authentication holds the key used to validate the HS256 signature of access tokens.
type Authentication struct {
	Secret string
}

type Notification struct {
	Interval time.Duration
	// Offsets are the durations before the start of an event at which reminders are sent.
	Offsets   []time.Duration
	Retention time.Duration
}

type Presence struct {
	QueueSize int
}

type Recurrence struct {
	CalendarAware bool
}

// Tracing is disabled unless a Jaeger collector endpoint is given.
type Tracing struct {
	JaegerEndpoint string
}

type Logging struct {
	Level       slog.Level
	PrettyPrint bool
}

type environment struct {
	errs []error
}

func (e *environment) require(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		e.errs = append(e.errs, fmt.Errorf("can't find environment variable: %s", key))
	}
	return value
}

func (e *environment) requireInt(key string) int {
	valueStr := e.require(key)
	if valueStr == "" {
		return 0
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("can't parse %s as integer: %v", key, err))
	}
	return value
}

func (e *environment) optional(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}

func (e *environment) optionalInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("can't parse %s as integer: %v", key, err))
		return fallback
	}
	return value
}

func (e *environment) optionalBool(key string, fallback bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("can't parse %s as boolean: %v", key, err))
		return fallback
	}
	return value
}

func (e *environment) optionalDuration(key string, fallback time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("can't parse %s as duration: %v", key, err))
		return fallback
	}
	if value <= 0 {
		e.errs = append(e.errs, fmt.Errorf("%s must be positive", key))
		return fallback
	}
	return value
}

func (e *environment) optionalList(key string, fallback []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var values []string
	for _, value := range strings.Split(valueStr, ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}
	return values
}

// optionalMinutes parses a comma separated list of minutes into ascending durations.
func (e *environment) optionalMinutes(key string, fallback []time.Duration) []time.Duration {
	values := e.optionalList(key, nil)
	if values == nil {
		return fallback
	}
	offsets := make([]time.Duration, 0, len(values))
	for _, value := range values {
		minutes, err := strconv.Atoi(value)
		if err != nil || minutes < 0 {
			e.errs = append(e.errs, fmt.Errorf("can't parse %s: %q is not a non-negative number of minutes", key, value))
			return fallback
		}
		offsets = append(offsets, time.Duration(minutes)*time.Minute)
	}
	slices.Sort(offsets)
	return slices.Compact(offsets)
}

func (e *environment) optionalLevel(key string, fallback slog.Level) slog.Level {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(valueStr)); err != nil {
		e.errs = append(e.errs, fmt.Errorf("can't parse %s as log level: %v", key, err))
		return fallback
	}
	return level
}
