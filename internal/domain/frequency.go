package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Frequency is a PWM frequency in Hz.
type Frequency int

// Safe frequency bounds. Values outside never reach the driver.
const (
	SafeMin Frequency = 200
	SafeMax Frequency = 4000

	// OptimalTarget is the lowest frequency considered flicker-risk free
	// (IEEE 1789). It is the default boot target.
	OptimalTarget Frequency = 1250
)

// ParseFrequency parses user input into a Frequency. Surrounding whitespace
// and an optional "Hz" suffix are accepted. Range is not checked.
func ParseFrequency(s string) (Frequency, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(v, "Hz"), "hz"))
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
	return Frequency(n), nil
}

// Validate returns ErrOutOfRange when f lies outside [SafeMin, SafeMax].
func (f Frequency) Validate() error {
	if f < SafeMin || f > SafeMax {
		return fmt.Errorf("%w: %d Hz not in [%d, %d]", ErrOutOfRange, int(f), int(SafeMin), int(SafeMax))
	}
	return nil
}

func (f Frequency) String() string {
	return strconv.Itoa(int(f)) + " Hz"
}

// Reading is what the driver reports for the panel.
type Reading struct {
	Current   Frequency
	BaseClock Frequency
}

// SmartFrequency returns the suggested balance point for a panel: the optimal
// target, capped at half the base clock, never below SafeMin. An unknown base
// clock (zero or negative) yields the optimal target.
func SmartFrequency(baseClock Frequency) Frequency {
	if baseClock <= 0 {
		return OptimalTarget
	}
	target := OptimalTarget
	if target > baseClock/2 {
		target = baseClock / 2
	}
	if target < SafeMin {
		return SafeMin
	}
	return target
}

// Rating classifies the flicker risk of a current frequency.
type Rating int

const (
	RatingFlickerFree Rating = iota
	RatingLow
	RatingModerate
	RatingHigh
)

// Rate classifies a reported frequency. Zero means the panel does not
// modulate its backlight at all.
func Rate(f Frequency) Rating {
	switch {
	case f <= 0:
		return RatingFlickerFree
	case f < 1249:
		return RatingLow
	case f < 2999:
		return RatingModerate
	default:
		return RatingHigh
	}
}

// String returns a human-readable representation of the rating.
func (r Rating) String() string {
	switch r {
	case RatingFlickerFree:
		return "flicker-free"
	case RatingLow:
		return "low (perceptible flicker)"
	case RatingModerate:
		return "moderate"
	case RatingHigh:
		return "high"
	default:
		return "unknown"
	}
}
