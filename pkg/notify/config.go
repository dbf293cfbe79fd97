package notify

// Config is the environment-driven setup of a Delegater.
type Config struct {
	Enabled        bool     `env:"NOTIFY_ENABLED" envDefault:"true"`
	Components     []string `env:"NOTIFY_COMPONENTS" envDefault:"remote,local,global" envSeparator:","`
	EffectsEnabled bool     `env:"NOTIFY_EFFECTS_ENABLED" envDefault:"true"`
	FeedBuffer     int      `env:"NOTIFY_FEED_BUFFER" envDefault:"64"`
	LogLevel       string   `env:"NOTIFY_LOG_LEVEL" envDefault:"info"`
	LogFormat      string   `env:"NOTIFY_LOG_FORMAT" envDefault:"json"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		Components:     []string{"remote", "local", "global"},
		EffectsEnabled: true,
		FeedBuffer:     64,
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// ComponentMask parses Components into a target mask.
func (c Config) ComponentMask() (Target, error) {
	return ParseTargets(c.Components)
}
