package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type (
	// Config holds configuration settings for the demo service
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// Simulated processing
		ProcessingTick   time.Duration
		ProcessingSettle time.Duration
		AutoAdvance      time.Duration

		// Content
		UrgentDentistCount int
		FlowDir            string

		// Engine policy
		ReplacePolicy  ReplacePolicy
		DedupeUnlocked bool

		ShutdownTimeout time.Duration
	}

	// ReplacePolicy decides what starting a flow does while another flow
	// is still active
	ReplacePolicy string
)

const (
	// ReplaceActive cancels the active flow and starts the new one
	ReplaceActive ReplacePolicy = "replace"

	// RejectActive leaves the active flow alone and ignores the start
	RejectActive ReplacePolicy = "reject"
)

const (
	DefaultAPIPort = 8080
	DefaultAPIHost = "0.0.0.0"
	MaxTCPPort     = 65535

	DefaultProcessingTick     = 900 * time.Millisecond
	DefaultProcessingSettle   = 400 * time.Millisecond
	DefaultAutoAdvance        = 500 * time.Millisecond
	DefaultShutdownTimeout    = 10 * time.Second
	DefaultUrgentDentistCount = 2

	MaxDelayMs         = 60_000
	MaxShutdownMs      = 600_000
	MaxUrgentDentists  = 100
	DefaultLogLevel    = "info"
	DefaultReplaceMode = ReplaceActive
)

var (
	ErrInvalidAPIPort       = errors.New("invalid API port")
	ErrInvalidTick          = errors.New("processing tick must be positive")
	ErrInvalidSettle        = errors.New("processing settle must be positive")
	ErrInvalidAutoAdvance   = errors.New("auto advance must be positive")
	ErrInvalidShutdown      = errors.New("shutdown timeout must be positive")
	ErrInvalidUrgentCount   = errors.New("urgent dentist count must be positive")
	ErrInvalidReplacePolicy = errors.New("invalid flow replace policy")
	ErrInvalidEnvValue      = errors.New("invalid environment value")
)

// NewDefaultConfig creates a configuration with the demo's default timings
// and policies
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:            DefaultAPIHost,
		APIPort:            DefaultAPIPort,
		LogLevel:           DefaultLogLevel,
		ProcessingTick:     DefaultProcessingTick,
		ProcessingSettle:   DefaultProcessingSettle,
		AutoAdvance:        DefaultAutoAdvance,
		UrgentDentistCount: DefaultUrgentDentistCount,
		ReplacePolicy:      DefaultReplaceMode,
		DedupeUnlocked:     true,
		ShutdownTimeout:    DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed
func (c *Config) LoadFromEnv() error {
	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if flowDir := os.Getenv("FLOW_DIR"); flowDir != "" {
		c.FlowDir = flowDir
	}
	if policy := os.Getenv("FLOW_REPLACE_POLICY"); policy != "" {
		c.ReplacePolicy = ReplacePolicy(strings.ToLower(policy))
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"URGENT_DENTIST_COUNT", &c.UrgentDentistCount, 0, MaxUrgentDentists,
	); err != nil {
		return err
	}

	if err := loadEnvMs(
		"PROCESSING_TICK_MS", &c.ProcessingTick, MaxDelayMs,
	); err != nil {
		return err
	}
	if err := loadEnvMs(
		"PROCESSING_SETTLE_MS", &c.ProcessingSettle, MaxDelayMs,
	); err != nil {
		return err
	}
	if err := loadEnvMs(
		"AUTO_ADVANCE_MS", &c.AutoAdvance, MaxDelayMs,
	); err != nil {
		return err
	}
	if err := loadEnvMs(
		"SHUTDOWN_TIMEOUT_MS", &c.ShutdownTimeout, MaxShutdownMs,
	); err != nil {
		return err
	}

	return loadEnvBool("DEDUPE_UNLOCKED", &c.DedupeUnlocked)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}
	if c.ProcessingTick <= 0 {
		return ErrInvalidTick
	}
	if c.ProcessingSettle <= 0 {
		return ErrInvalidSettle
	}
	if c.AutoAdvance <= 0 {
		return ErrInvalidAutoAdvance
	}
	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdown
	}
	if c.UrgentDentistCount <= 0 {
		return ErrInvalidUrgentCount
	}
	switch c.ReplacePolicy {
	case ReplaceActive, RejectActive:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidReplacePolicy, c.ReplacePolicy)
	}
	return nil
}

// Addr returns the host:port the API server listens on
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]. Returns an error if
// the value cannot be parsed or falls outside the valid range
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s: %q", ErrInvalidEnvValue, key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("%w: %s: %d out of range [%d, %d]",
			ErrInvalidEnvValue, key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

func loadEnvMs(key string, dst *time.Duration, max int64) error {
	if os.Getenv(key) == "" {
		return nil
	}
	var ms int64
	if err := loadEnvInt(key, &ms, 0, max); err != nil {
		return err
	}
	*dst = time.Duration(ms) * time.Millisecond
	return nil
}

func loadEnvBool(key string, dst *bool) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("%w: %s: %q", ErrInvalidEnvValue, key, s)
	}
	*dst = v
	return nil
}
