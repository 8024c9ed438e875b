package bot

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
)

// Config holds the server configuration loaded from environment variables.
type Config struct {
	PublicKey     string       `env:"DISCORD_PUBLIC_KEY,notEmpty"`
	ApplicationID snowflake.ID `env:"DISCORD_APPLICATION_ID,notEmpty"`
	APIBaseURL    string       `env:"DISCORD_API_BASE_URL" envDefault:"https://discord.com/api/v10"`

	HTTPAddr         string `env:"HTTP_ADDR"         envDefault:":8080"`
	InteractionsPath string `env:"INTERACTIONS_PATH" envDefault:"/interactions"`

	// AckBudget is how long the router waits for a handler's first message
	// before answering with a loading message.
	AckBudget       time.Duration `env:"ACK_BUDGET"       envDefault:"2s"`
	TaskTimeout     time.Duration `env:"TASK_TIMEOUT"     envDefault:"2m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	Followup DeliveryConfig `envPrefix:"FOLLOWUP_"`
}

// DeliveryConfig controls webhook delivery pacing and retries.
type DeliveryConfig struct {
	MaxAttempts  int           `env:"MAX_ATTEMPTS"  envDefault:"5"`
	Pause        time.Duration `env:"PAUSE"         envDefault:"250ms"`
	DefaultRetry time.Duration `env:"DEFAULT_RETRY" envDefault:"1200ms"`
	RetryStep    time.Duration `env:"RETRY_STEP"    envDefault:"250ms"`
	MaxRetry     time.Duration `env:"MAX_RETRY"     envDefault:"8s"`
}

// DefaultDeliveryConfig returns the values used when nothing is configured.
func DefaultDeliveryConfig() DeliveryConfig {
	return DeliveryConfig{
		MaxAttempts:  5,
		Pause:        250 * time.Millisecond,
		DefaultRetry: 1200 * time.Millisecond,
		RetryStep:    250 * time.Millisecond,
		MaxRetry:     8 * time.Second,
	}
}

// RegisterConfig holds the configuration of the command registration tool.
type RegisterConfig struct {
	BotToken      string       `env:"DISCORD_BOT_TOKEN,notEmpty"`
	ApplicationID snowflake.ID `env:"DISCORD_APPLICATION_ID,notEmpty"`
	GuildID       snowflake.ID `env:"DISCORD_GUILD_ID"`
}

// LoadConfig loads configuration from environment variables.
// Returns an error if required fields are missing.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadRegisterConfig loads the registration tool configuration from
// environment variables.
func LoadRegisterConfig() (*RegisterConfig, error) {
	cfg := &RegisterConfig{}

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if !strings.HasPrefix(c.InteractionsPath, "/") {
		errs = append(errs, errors.New("INTERACTIONS_PATH must start with /"))
	}
	if c.AckBudget <= 0 {
		errs = append(errs, errors.New("ACK_BUDGET must be positive"))
	}
	if c.Followup.MaxAttempts < 1 {
		errs = append(errs, errors.New("FOLLOWUP_MAX_ATTEMPTS must be at least 1"))
	}
	return errors.Join(errs...)
}

func parseEnv(v any) error {
	return env.ParseWithOptions(v, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(snowflake.ID(0)): func(s string) (any, error) {
				return snowflake.Parse(s)
			},
		},
	})
}
