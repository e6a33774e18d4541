// Package config provides configuration loading and management.
package config

import "fmt"

// SassConfig configures the sass preprocessor.
type SassConfig struct {
	// Binary is the dart-sass executable speaking the embedded protocol.
	// Env: SFCC_SASS_BINARY, Default: sass
	Binary string `json:"binary,omitempty" yaml:"binary,omitempty"`
}

// LessConfig configures the less preprocessor.
type LessConfig struct {
	// Binary is the lessc executable.
	// Env: SFCC_LESS_BINARY, Default: lessc
	Binary string `json:"binary,omitempty" yaml:"binary,omitempty"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps.
	Timestamps *bool `json:"timestamps,omitempty" yaml:"timestamps,omitempty"`
}

// DevConfig configures `sfcc dev`.
type DevConfig struct {
	// Addr is the listen address. Env: SFCC_DEV_ADDR, Default: :5173
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// CacheSize bounds the in-memory compile cache.
	CacheSize int `json:"cacheSize,omitempty" yaml:"cacheSize,omitempty"`
}

// PublishConfig locates the bucket `sfcc compile --publish` uploads to.
type PublishConfig struct {
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	AccessKey string `json:"accessKey,omitempty" yaml:"accessKey,omitempty"`
	SecretKey string `json:"secretKey,omitempty" yaml:"secretKey,omitempty"`
	UseSSL    bool   `json:"useSSL,omitempty" yaml:"useSSL,omitempty"`
}

// Config represents the sfcc configuration.
// Loaded from ~/.sfcc/config.yaml, validated against the embedded CUE schema.
type Config struct {
	// Root is the base directory for components and stylesheet imports.
	Root string `json:"root,omitempty" yaml:"root,omitempty"`

	// OutDir receives compiled outputs.
	OutDir string `json:"outDir,omitempty" yaml:"outDir,omitempty"`

	AutoImportCSS      bool `json:"autoImportCss,omitempty" yaml:"autoImportCss,omitempty"`
	AutoResolveImports bool `json:"autoResolveImports,omitempty" yaml:"autoResolveImports,omitempty"`
	IsProd             bool `json:"isProd,omitempty" yaml:"isProd,omitempty"`

	Sass    SassConfig    `json:"sass,omitempty" yaml:"sass,omitempty"`
	Less    LessConfig    `json:"less,omitempty" yaml:"less,omitempty"`
	Log     LogConfig     `json:"log,omitempty" yaml:"log,omitempty"`
	Dev     DevConfig     `json:"dev,omitempty" yaml:"dev,omitempty"`
	Publish PublishConfig `json:"publish,omitempty" yaml:"publish,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `sfcc config init` to generate the initial config file.
func DefaultConfig() *Config {
	values := make(map[string]any, len(Settings))
	for _, s := range Settings {
		if s.Default != nil {
			values[s.Key] = s.Default
		}
	}
	cfg, err := decode(values)
	if err != nil {
		panic(fmt.Sprintf("decoding default config: %v", err))
	}
	return cfg
}
