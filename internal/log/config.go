package log

// Config controls the logger construction.
type Config struct {
	// Name is attached to every log line as the service name.
	Name string `conf:"name" yaml:"name" json:"name"`

	// Level is one of debug, info, warn, error.
	Level string `conf:"level" yaml:"level" json:"level"`

	// Encoding is json or console.
	Encoding string `conf:"encoding" yaml:"encoding" json:"encoding"`
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "gmcdash"
	}

	if c.Level == "" {
		c.Level = "info"
	}

	if c.Encoding == "" {
		c.Encoding = "console"
	}

	return c
}
