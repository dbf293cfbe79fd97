// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for struct parsing:
//
//	type Config struct {
//	    Enabled    bool     `env:"NOTIFY_ENABLED" envDefault:"true"`
//	    Components []string `env:"NOTIFY_COMPONENTS" envSeparator:","`
//	}
//
//	if err := config.LoadEnv(".env.local"); err != nil {
//	    return err
//	}
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Load parses each struct type once per process and serves later calls from
// an in-memory cache; Reload forces a fresh parse and Reset drops the cache,
// which is what tests usually want. Parse bypasses the cache and accepts a
// variable name prefix, for components that embed a shared struct under
// several prefixes.
//
// Errors wrap ErrParsingConfig and can be checked with errors.Is.
package config
