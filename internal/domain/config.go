package domain

// Configuration is the persisted boot target. It is the single source of
// truth for what frequency applies at next login.
type Configuration struct {
	LastFrequency Frequency `json:"last_frequency"`
}

// DefaultConfiguration returns the configuration used when none is stored.
func DefaultConfiguration() Configuration {
	return Configuration{LastFrequency: OptimalTarget}
}

// BootTarget returns the frequency the watchdog should apply. Stored values
// below SafeMin fall back to OptimalTarget.
func (c Configuration) BootTarget() Frequency {
	if c.LastFrequency < SafeMin {
		return OptimalTarget
	}
	return c.LastFrequency
}
