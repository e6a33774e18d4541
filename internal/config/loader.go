package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variable prefix for sfcc configuration.
const envPrefix = "SFCC"

// Loader reads configuration from flags, the environment and a YAML file
// and resolves each key by precedence.
type Loader struct {
	env *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	env := viper.New()
	env.SetEnvPrefix(envPrefix)
	env.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, s := range Settings {
		_ = env.BindEnv(s.Key, s.Env)
	}
	return &Loader{env: env}
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process
// environment. Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// LoadOptions selects the inputs of Load.
type LoadOptions struct {
	// ConfigFile is the --config flag value; empty resolves the default.
	ConfigFile string
	// Flags maps config keys to the values of flags the user set.
	Flags map[string]string
}

// Loaded is the result of Load.
type Loaded struct {
	Config *Config
	// Path is the config file consulted, whether or not it existed.
	Path       string
	PathSource ConfigSource
	FileFound  bool
	Values     []ResolvedValue
}

// Load resolves every key with precedence flag > env > config > default.
func (l *Loader) Load(opts LoadOptions) (*Loaded, error) {
	pathResult, err := ResolveConfigPath(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	loaded := &Loaded{Path: pathResult.ConfigPath, PathSource: pathResult.Source}

	file := viper.New()
	file.SetConfigFile(pathResult.ConfigPath)
	file.SetConfigType("yaml")
	if err := file.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		loaded.FileFound = true
	}

	src := layers{flags: opts.Flags, env: l.env, config: file}
	values := make(map[string]any, len(Settings))
	for _, s := range Settings {
		rv, ok := src.resolve(s)
		if !ok {
			continue
		}
		values[s.Key] = rv.Value
		loaded.Values = append(loaded.Values, rv)
	}

	loaded.Config, err = decode(values)
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

// decode builds a Config from dotted keys. String values from flags and
// the environment are converted to the field types.
func decode(values map[string]any) (*Config, error) {
	v := viper.New()
	for key, value := range values {
		v.Set(key, value)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// ConfigFileExists checks if the config file exists.
func ConfigFileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
