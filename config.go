package binhash

import "fmt"

// Config gathers every tuning knob recognized at table creation. All
// five fill/growth fields are named struct fields rather than
// positional constructor arguments on purpose: a config literal that
// omits one field gets Go's zero value for it, not a silently shifted
// neighbor's value, which was the failure mode in the original
// default-config initializer this package's spec is drawn from.
type Config struct {
	// Start is the target key capacity used to seed the initial prime index.
	Start uint32
	// Data is the number of 32-bit payload words per entry, 0..15.
	Data int
	// Depth is the cuckoo displacement recursion depth cap.
	Depth int
	// Lower and Upper are fill-ratio thresholds in [0,1], Lower < Upper.
	Lower float64
	Upper float64
	// Growth is the base multiplier for prime-index growth on resize.
	Growth float64
	// Attempt is the per-retry additive factor.
	Attempt float64
	// Random is the coefficient of a uniform-[0,1] noise term.
	Random float64
}

// DefaultConfig returns the documented default configuration. Note
// that Lower defaults to 0.0, which makes shrink unreachable (fill
// can never fall below zero) — this is intentional and documented,
// not a bug; callers who want shrink behavior must set Lower
// explicitly (0.05 is a reasonable starting point).
func DefaultConfig() Config {
	return Config{
		Start:   112,
		Data:    1,
		Depth:   3,
		Lower:   0.0,
		Upper:   1.0,
		Growth:  1.5,
		Attempt: 0.5,
		Random:  0.5,
	}
}

func (c Config) validate() error {
	if c.Data < 0 || c.Data > 15 {
		return fmt.Errorf("binhash: config: data must be in [0,15], got %d", c.Data)
	}
	if c.Depth < 1 {
		return fmt.Errorf("binhash: config: depth must be >= 1, got %d", c.Depth)
	}
	if c.Lower < 0 || c.Upper > 1 || c.Lower >= c.Upper {
		return fmt.Errorf("binhash: config: require 0 <= lower < upper <= 1, got lower=%v upper=%v", c.Lower, c.Upper)
	}
	if c.Growth <= 0 {
		return fmt.Errorf("binhash: config: growth must be > 0, got %v", c.Growth)
	}
	if c.Attempt < 0 {
		return fmt.Errorf("binhash: config: attempt must be >= 0, got %v", c.Attempt)
	}
	if c.Random < 0 {
		return fmt.Errorf("binhash: config: random must be >= 0, got %v", c.Random)
	}
	return nil
}
