// Package config loads the YAML configuration of the smartcard tool.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	yaml "gopkg.in/yaml.v3"

	"github.com/gregLibert/apdu/pkg/octet"
)

// LogLevelEnv overrides log.level when set.
const LogLevelEnv = "SMARTCARD_LOG_LEVEL"

type ReaderConfig struct {
	// Index is the 0-based position of the reader in the PC/SC list.
	Index int `yaml:"index" validate:"gte=0"`
	// Protocol is "auto" to use whatever the card negotiates, or "t0"/"t1"
	// to offer only that protocol.
	Protocol string `yaml:"protocol" validate:"oneof=auto t0 t1"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Step is one command of a script.
type Step struct {
	Name    string       `yaml:"name"`
	Command octet.Buffer `yaml:"command" validate:"required,hexadecimal"`
	// Expect is the status word the step must end with, e.g. "9000".
	// Empty accepts any status.
	Expect string `yaml:"expect" validate:"omitempty,len=4,hexadecimal"`
}

type Config struct {
	Reader ReaderConfig `yaml:"reader"`
	Log    LogConfig    `yaml:"log"`
	Script []Step       `yaml:"script" validate:"dive"`
}

var defaultConfig = Config{
	Reader: ReaderConfig{
		Protocol: "auto",
	},
	Log: LogConfig{
		Level:  "info",
		Format: "console",
	},
}

func Default() *Config {
	c := defaultConfig
	return &c
}

// Read reads the config from a file, on top of the values already in c.
func (c *Config) Read(file string) error {
	yamlFile, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	return c.Parse(yamlFile)
}

// Parse decodes YAML on top of the values already in c.
func (c *Config) Parse(src []byte) error {
	if err := yaml.Unmarshal(src, c); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

// Load returns the defaults overridden by file (if not empty) and by the
// environment, validated.
func Load(file string) (*Config, error) {
	c := Default()
	if file != "" {
		if err := c.Read(file); err != nil {
			return nil, err
		}
	}
	if level := os.Getenv(LogLevelEnv); level != "" {
		c.Log.Level = strings.ToLower(level)
	}
	if err := Validator().Struct(c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// Validator returns a validator that also understands octet.Buffer fields,
// validated through their hex form.
func Validator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if b, ok := field.Interface().(octet.Buffer); ok {
			return b.String()
		}
		return nil
	}, octet.Buffer{})
	return v
}

// Logger builds a zap logger for the configured level and format.
func (l LogConfig) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	if l.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}

	return cfg.Build()
}
