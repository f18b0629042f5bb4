package resources

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "CALENDAR"

type Config struct {
	CommandHost     string
	CommandPort     int
	RestEnabled     bool
	RestHost        string
	RestPort        int
	DebugEnabled    bool
	DebugPort       int
	LogLevel        string
	LogFormat       string
	OtelEnabled     bool
	OtelEndpoint    string
	FuzzyDelta      float64
	InfoMaxLength   int
	MessageMaxBytes int
	ShutdownTimeout time.Duration
}

func (c Config) CommandAddress() string {
	return net.JoinHostPort(c.CommandHost, strconv.Itoa(c.CommandPort))
}

func (c Config) RestAddress() string {
	return net.JoinHostPort(c.RestHost, strconv.Itoa(c.RestPort))
}

func (c Config) DebugAddress() string {
	return net.JoinHostPort("localhost", strconv.Itoa(c.DebugPort))
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("COMMAND_HOST", "localhost")
	v.SetDefault("COMMAND_PORT", 9999)
	v.SetDefault("REST_ENABLED", true)
	v.SetDefault("REST_HOST", "localhost")
	v.SetDefault("REST_PORT", 8080)
	v.SetDefault("DEBUG_ENABLED", false)
	v.SetDefault("DEBUG_PORT", 6060)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_ENDPOINT", "localhost:4317")
	v.SetDefault("FUZZY_DELTA", 0.5)
	v.SetDefault("INFO_MAX_LENGTH", 1312)
	v.SetDefault("MESSAGE_MAX_BYTES", 1024)
	v.SetDefault("SHUTDOWN_TIMEOUT", 15*time.Second)
}

// BindFlags exposes the most used keys on the command line. Flags win over
// environment variables, which win over the config file.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	flags.String("command-host", "localhost", "host the command protocol listens on")
	flags.Int("command-port", 9999, "port the command protocol listens on")
	flags.Int("rest-port", 8080, "port the REST API listens on")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")

	bindings := map[string]string{
		"COMMAND_HOST": "command-host",
		"COMMAND_PORT": "command-port",
		"REST_PORT":    "rest-port",
		"LOG_LEVEL":    "log-level",
	}

	for key, flag := range bindings {
		err := v.BindPFlag(key, flags.Lookup(flag))
		if err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	return nil
}

// LoadConfig reads the optional config file and the CALENDAR_* environment.
func LoadConfig(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)

		err := v.ReadInConfig()
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	config := Config{
		CommandHost:     v.GetString("COMMAND_HOST"),
		CommandPort:     v.GetInt("COMMAND_PORT"),
		RestEnabled:     v.GetBool("REST_ENABLED"),
		RestHost:        v.GetString("REST_HOST"),
		RestPort:        v.GetInt("REST_PORT"),
		DebugEnabled:    v.GetBool("DEBUG_ENABLED"),
		DebugPort:       v.GetInt("DEBUG_PORT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		OtelEnabled:     v.GetBool("OTEL_ENABLED"),
		OtelEndpoint:    v.GetString("OTEL_ENDPOINT"),
		FuzzyDelta:      v.GetFloat64("FUZZY_DELTA"),
		InfoMaxLength:   v.GetInt("INFO_MAX_LENGTH"),
		MessageMaxBytes: v.GetInt("MESSAGE_MAX_BYTES"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	if config.FuzzyDelta < 0 || config.FuzzyDelta > 1 {
		return Config{}, fmt.Errorf("fuzzy delta must be within [0, 1], got %v", config.FuzzyDelta)
	}

	return config, nil
}
