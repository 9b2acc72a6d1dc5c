package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	SourceDir     string   `mapstructure:"source_dir" yaml:"source_dir" validate:"required"`
	SourcePattern string   `mapstructure:"source_pattern" yaml:"source_pattern" validate:"required"`
	DateLayouts   []string `mapstructure:"date_layouts" yaml:"date_layouts"`

	// Dashboard sizing
	TopN          int `mapstructure:"top_n" yaml:"top_n" validate:"min=1,max=100"`
	SecondaryTopN int `mapstructure:"secondary_top_n" yaml:"secondary_top_n" validate:"min=1,max=100"`
	PreviewRows   int `mapstructure:"preview_rows" yaml:"preview_rows" validate:"min=0"`

	Workers int      `mapstructure:"workers" yaml:"workers" validate:"min=1,max=64"`
	Palette []string `mapstructure:"palette" yaml:"palette" validate:"dive,hexcolor"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`

	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr" validate:"required,hostname_port"`
}

// Keys lists every configuration key in the order `config show` prints them.
var Keys = []string{
	"source_dir", "source_pattern", "date_layouts",
	"top_n", "secondary_top_n", "preview_rows",
	"workers", "palette",
	"log_level", "log_format", "listen_addr",
}

var validate = validator.New()

// Validate checks field ranges and formats.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			sort.Strings(msgs)
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Value returns the printable value of key.
func (c *Global) Value(key string) (string, error) {
	switch key {
	case "source_dir":
		return c.SourceDir, nil
	case "source_pattern":
		return c.SourcePattern, nil
	case "date_layouts":
		return strings.Join(c.DateLayouts, ", "), nil
	case "top_n":
		return strconv.Itoa(c.TopN), nil
	case "secondary_top_n":
		return strconv.Itoa(c.SecondaryTopN), nil
	case "preview_rows":
		return strconv.Itoa(c.PreviewRows), nil
	case "workers":
		return strconv.Itoa(c.Workers), nil
	case "palette":
		return strings.Join(c.Palette, ", "), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "listen_addr":
		return c.ListenAddr, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Set parses val into key and validates the result. List keys take a
// comma-separated value.
func (c *Global) Set(key, val string) error {
	next := *c
	switch key {
	case "source_dir":
		next.SourceDir = val
	case "source_pattern":
		next.SourcePattern = val
	case "date_layouts":
		next.DateLayouts = splitList(val)
	case "top_n", "secondary_top_n", "preview_rows", "workers":
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		switch key {
		case "top_n":
			next.TopN = i
		case "secondary_top_n":
			next.SecondaryTopN = i
		case "preview_rows":
			next.PreviewRows = i
		default:
			next.Workers = i
		}
	case "palette":
		next.Palette = splitList(val)
	case "log_level":
		next.LogLevel = strings.ToLower(val)
	case "log_format":
		next.LogFormat = strings.ToLower(val)
	case "listen_addr":
		next.ListenAddr = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func splitList(val string) []string { return trimList(strings.Split(val, ",")) }

func trimList(in []string) []string {
	var out []string
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DefaultPath returns ~/.salesdash/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".salesdash", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.salesdash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (including a .env file in the working directory) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// A missing .env is normal; variables already set win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SALESDASH")
	v.AutomaticEnv()

	v.SetDefault("source_dir", ".")
	v.SetDefault("source_pattern", "sales_data_*.csv")
	v.SetDefault("date_layouts", []string{})
	v.SetDefault("top_n", 10)
	v.SetDefault("secondary_top_n", 5)
	v.SetDefault("preview_rows", 5)
	v.SetDefault("workers", 4)
	v.SetDefault("palette", []string{})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("listen_addr", "127.0.0.1:8080")

	if cfgFile != "" {
		// A named file that does not exist yet is created by Save.
		if _, err := os.Stat(cfgFile); err == nil {
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
			}
		}
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Env values are split on commas by viper; entries keep their spaces.
	c.DateLayouts = trimList(c.DateLayouts)
	c.Palette = trimList(c.Palette)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
