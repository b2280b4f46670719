// Package config loads sleepq settings from flags, environment variables
// prefixed SLEEPQ_, an optional YAML file and a .env file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/sleepq/cascade"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/pkg/log"
)

// Keys.
const (
	KeyLogLevel         = "log-level"
	KeyOutput           = "output"
	KeyArtifactsDir     = "artifacts.dir"
	KeyLinearArtifact   = "artifacts.linear"
	KeyNeuralArtifact   = "artifacts.neural"
	KeyEncodersArtifact = "artifacts.encoders"
	KeyAveragesArtifact = "artifacts.averages"
	KeyCascadeProfile   = "cascade.profile"
	KeyServerAddr       = "server.addr"
)

// EnvPrefix prefixes every environment variable, e.g. SLEEPQ_CASCADE_PROFILE.
const EnvPrefix = "SLEEPQ"

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config is the resolved configuration.
type Config struct {
	LogLevel  string          `mapstructure:"log-level"`
	Output    string          `mapstructure:"output"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Cascade   CascadeConfig   `mapstructure:"cascade"`
	Server    ServerConfig    `mapstructure:"server"`
}

// ArtifactsConfig names the artifact files. Relative names resolve against Dir.
type ArtifactsConfig struct {
	Dir      string `mapstructure:"dir"`
	Linear   string `mapstructure:"linear"`
	Neural   string `mapstructure:"neural"`
	Encoders string `mapstructure:"encoders"`
	Averages string `mapstructure:"averages"`
}

// CascadeConfig selects the tier list.
type CascadeConfig struct {
	Profile string `mapstructure:"profile"`
}

// ServerConfig configures the HTTP endpoint.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Output:   OutputText,
		Artifacts: ArtifactsConfig{
			Dir:      ".",
			Linear:   "sleep_model.json",
			Neural:   "sleep_nn_model.json",
			Encoders: "encoders.json",
			Averages: "sleep_quality_avg_values.csv",
		},
		Cascade: CascadeConfig{Profile: string(cascade.ProfileFull)},
		Server:  ServerConfig{Addr: ":8080"},
	}
}

// SetDefaults registers Default() on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyOutput, d.Output)
	v.SetDefault(KeyArtifactsDir, d.Artifacts.Dir)
	v.SetDefault(KeyLinearArtifact, d.Artifacts.Linear)
	v.SetDefault(KeyNeuralArtifact, d.Artifacts.Neural)
	v.SetDefault(KeyEncodersArtifact, d.Artifacts.Encoders)
	v.SetDefault(KeyAveragesArtifact, d.Artifacts.Averages)
	v.SetDefault(KeyCascadeProfile, d.Cascade.Profile)
	v.SetDefault(KeyServerAddr, d.Server.Addr)
}

// Init prepares v: loads .env from the working directory when present,
// binds SLEEPQ_ environment variables and reads the config file. An
// explicit cfgFile must exist; the default search (., $HOME/.sleepq) may
// find nothing.
func Init(v *viper.Viper, cfgFile string) error {
	_ = godotenv.Load()

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %s", cfgFile)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".sleepq"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "read config")
		}
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	if _, _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return errors.NewValueError("config.Validate", "output must be text, json or yaml, got "+c.Output)
	}
	if _, err := cascade.ParseProfile(c.Cascade.Profile); err != nil {
		return err
	}
	return nil
}

// Profile returns the parsed cascade profile.
func (c Config) Profile() cascade.Profile {
	p, err := cascade.ParseProfile(c.Cascade.Profile)
	if err != nil {
		return cascade.ProfileFull
	}
	return p
}

// ArtifactPaths resolves the artifact names against Artifacts.Dir.
func (c Config) ArtifactPaths() cascade.Artifacts {
	return cascade.Artifacts{
		Linear:   c.resolve(c.Artifacts.Linear),
		Neural:   c.resolve(c.Artifacts.Neural),
		Encoders: c.resolve(c.Artifacts.Encoders),
		Averages: c.resolve(c.Artifacts.Averages),
	}
}

func (c Config) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) || c.Artifacts.Dir == "" {
		return name
	}
	return filepath.Join(c.Artifacts.Dir, name)
}
