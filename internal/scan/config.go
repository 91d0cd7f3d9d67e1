package scan

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cardmat/cardscan/internal/rectify"
)

// Defaults for the orchestrator timing knobs.
const (
	DefaultStabilityThreshold = 3
	DefaultTickInterval       = 250 * time.Millisecond
	DefaultCoolDown           = 30 * time.Second
	DefaultMinDispatchGap     = 2 * time.Second
	DefaultCanonicalWidth     = 400
	DefaultCanonicalHeight    = 560
)

// Config collects the orchestrator tuning knobs.
type Config struct {
	// StabilityThreshold is the number of consecutive frames a card must
	// be seen before recognition is dispatched.
	StabilityThreshold int

	// TickInterval is the frame acquisition cadence used by Run.
	TickInterval time.Duration

	// CoolDown is how long the orchestrator ignores frames after a
	// dispatch, so one physical card does not trigger repeated scans.
	CoolDown time.Duration

	// MinDispatchGap is the minimum wall-clock spacing between two
	// recognition dispatches, independent of cool-down.
	MinDispatchGap time.Duration

	// CanonicalWidth and CanonicalHeight are the rectified card
	// dimensions in pixels. The defaults preserve the 63.5x88.9 card
	// aspect ratio.
	CanonicalWidth  int
	CanonicalHeight int

	// Bands are the horizontal regions cut from the rectified card and
	// sent to recognition, keyed by field name.
	Bands []rectify.BandSpec
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		StabilityThreshold: DefaultStabilityThreshold,
		TickInterval:       DefaultTickInterval,
		CoolDown:           DefaultCoolDown,
		MinDispatchGap:     DefaultMinDispatchGap,
		CanonicalWidth:     DefaultCanonicalWidth,
		CanonicalHeight:    DefaultCanonicalHeight,
		Bands:              rectify.DefaultBands(),
	}
}

// LoadConfigFromEnv builds a Config from CARDSCAN_* environment variables,
// falling back to defaults for anything unset.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	var err error
	if cfg.StabilityThreshold, err = intEnv("CARDSCAN_STABILITY_THRESHOLD", cfg.StabilityThreshold); err != nil {
		return cfg, err
	}
	if cfg.TickInterval, err = durationEnv("CARDSCAN_TICK_INTERVAL", cfg.TickInterval); err != nil {
		return cfg, err
	}
	if cfg.CoolDown, err = durationEnv("CARDSCAN_COOLDOWN", cfg.CoolDown); err != nil {
		return cfg, err
	}
	if cfg.MinDispatchGap, err = durationEnv("CARDSCAN_DISPATCH_GAP", cfg.MinDispatchGap); err != nil {
		return cfg, err
	}
	if cfg.CanonicalWidth, err = intEnv("CARDSCAN_CANONICAL_WIDTH", cfg.CanonicalWidth); err != nil {
		return cfg, err
	}
	if cfg.CanonicalHeight, err = intEnv("CARDSCAN_CANONICAL_HEIGHT", cfg.CanonicalHeight); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.StabilityThreshold < 1 {
		return fmt.Errorf("stability threshold must be at least 1, got %d", c.StabilityThreshold)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.CoolDown < 0 {
		return fmt.Errorf("cool-down must not be negative, got %s", c.CoolDown)
	}
	if c.MinDispatchGap < 0 {
		return fmt.Errorf("dispatch gap must not be negative, got %s", c.MinDispatchGap)
	}
	if c.CanonicalWidth < 2 || c.CanonicalHeight < 2 {
		return fmt.Errorf("canonical size must be at least 2x2, got %dx%d", c.CanonicalWidth, c.CanonicalHeight)
	}
	if len(c.Bands) == 0 {
		return fmt.Errorf("at least one recognition band is required")
	}
	return nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}
