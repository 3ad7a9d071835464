package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the duty
// roster service.
type Config struct {
	HTTPPort            int
	SQLiteDSN           string
	IdleTimeout         time.Duration
	WarningGrace        time.Duration
	RestoreGrace        time.Duration
	ScheduleHorizonDays int
	CrewSize            int
}

// Load parses configuration values from the current process environment.
//
// Every field has a default, so an empty environment yields a working
// configuration; invalid values are reported rather than silently replaced.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:            8080,
		SQLiteDSN:           "file:piketeisd.db?_foreign_keys=on",
		IdleTimeout:         55 * time.Second,
		WarningGrace:        5 * time.Second,
		RestoreGrace:        59 * time.Second,
		ScheduleHorizonDays: 30,
		CrewSize:            6,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("PIKET_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "PIKET_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("PIKET_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	readDuration := func(name string, target *time.Duration) {
		value := strings.TrimSpace(os.Getenv(name))
		if value == "" {
			return
		}
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed <= 0 {
			invalid = append(invalid, name)
			return
		}
		*target = parsed
	}
	readDuration("PIKET_IDLE_TIMEOUT", &cfg.IdleTimeout)
	readDuration("PIKET_WARNING_GRACE", &cfg.WarningGrace)
	readDuration("PIKET_RESTORE_GRACE", &cfg.RestoreGrace)

	readInt := func(name string, target *int) {
		value := strings.TrimSpace(os.Getenv(name))
		if value == "" {
			return
		}
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			invalid = append(invalid, name)
			return
		}
		*target = parsed
	}
	readInt("PIKET_SCHEDULE_HORIZON", &cfg.ScheduleHorizonDays)
	readInt("PIKET_CREW_SIZE", &cfg.CrewSize)

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
