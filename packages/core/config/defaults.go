package config

// DefaultConcurrency matches runner.DefaultConcurrency.
const DefaultConcurrency = 5

func DefaultConfig() *Config {
	return &Config{
		Reporters:   []string{"console"},
		Concurrency: DefaultConcurrency,
	}
}

// IsDefault reports whether c changes nothing relative to DefaultConfig.
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return len(c.Reporters) == 1 && c.Reporters[0] == defaults.Reporters[0] &&
		c.OutputDir == "" &&
		!c.GetParallel() &&
		c.Concurrency == defaults.Concurrency &&
		!c.GetBail() &&
		!c.GetVerbose() &&
		!c.GetNoColor() &&
		!c.GetSortable() &&
		c.ContainerName == "" &&
		c.ElementPluralName == "" &&
		c.EnvFile == "" &&
		len(c.Variables) == 0
}
