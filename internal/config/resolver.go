package config

import (
	"os"

	"github.com/sfckit/sfcc/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// Setting describes one configuration key and where it can be set.
type Setting struct {
	// Key is the dotted path in the config file.
	Key string
	// Env is the environment variable, always SFCC_ prefixed.
	Env string
	// Flag is the command-line flag, if any.
	Flag string
	// Default is used when no other source sets the key. Nil means unset.
	Default any
}

// Settings lists every configuration key in file order.
var Settings = []Setting{
	{Key: "root", Env: "SFCC_ROOT", Flag: "root", Default: "."},
	{Key: "outDir", Env: "SFCC_OUT_DIR", Flag: "out-dir", Default: "dist"},
	{Key: "autoImportCss", Env: "SFCC_AUTO_IMPORT_CSS", Flag: "auto-import-css", Default: false},
	{Key: "autoResolveImports", Env: "SFCC_AUTO_RESOLVE_IMPORTS", Flag: "auto-resolve-imports", Default: false},
	{Key: "isProd", Env: "SFCC_PROD", Flag: "prod", Default: false},
	{Key: "sass.binary", Env: "SFCC_SASS_BINARY", Default: "sass"},
	{Key: "less.binary", Env: "SFCC_LESS_BINARY", Default: "lessc"},
	{Key: "log.timestamps", Env: "SFCC_LOG_TIMESTAMPS", Flag: "timestamps", Default: true},
	{Key: "dev.addr", Env: "SFCC_DEV_ADDR", Flag: "addr", Default: ":5173"},
	{Key: "dev.cacheSize", Env: "SFCC_DEV_CACHE_SIZE", Default: 256},
	{Key: "publish.endpoint", Env: "SFCC_PUBLISH_ENDPOINT"},
	{Key: "publish.region", Env: "SFCC_PUBLISH_REGION", Default: "us-east-1"},
	{Key: "publish.bucket", Env: "SFCC_PUBLISH_BUCKET"},
	{Key: "publish.prefix", Env: "SFCC_PUBLISH_PREFIX"},
	{Key: "publish.accessKey", Env: "SFCC_PUBLISH_ACCESS_KEY"},
	{Key: "publish.secretKey", Env: "SFCC_PUBLISH_SECRET_KEY"},
	{Key: "publish.useSSL", Env: "SFCC_PUBLISH_USE_SSL", Default: true},
}

// secretKeys are never logged in clear.
var secretKeys = map[string]bool{
	"publish.accessKey": true,
	"publish.secretKey": true,
}

// ResolvedValue is the outcome of resolving one key.
type ResolvedValue struct {
	Key    string
	Value  any
	Source ConfigSource
	// Shadowed holds the values of lower-precedence sources that were set.
	Shadowed map[ConfigSource]any
}

// ResolveConfigPathResult contains the resolved config path and its source.
type ResolveConfigPathResult struct {
	ConfigPath string
	Source     ConfigSource
	Shadowed   map[ConfigSource]string
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) SFCC_CONFIG env, (3) ~/.sfcc/config.yaml.
func ResolveConfigPath(flagValue string) (ResolveConfigPathResult, error) {
	result := ResolveConfigPathResult{
		Shadowed: make(map[ConfigSource]string),
	}

	envValue := os.Getenv(ConfigEnv)

	paths, err := DefaultPaths()
	if err != nil {
		return result, err
	}
	defaultPath := paths.ConfigFile

	switch {
	case flagValue != "":
		result.ConfigPath = flagValue
		result.Source = SourceFlag
		if envValue != "" {
			result.Shadowed[SourceEnv] = envValue
		}
		result.Shadowed[SourceDefault] = defaultPath
	case envValue != "":
		result.ConfigPath = envValue
		result.Source = SourceEnv
		result.Shadowed[SourceDefault] = defaultPath
	default:
		result.ConfigPath = defaultPath
		result.Source = SourceDefault
	}

	result.ConfigPath, err = ExpandPath(result.ConfigPath)
	return result, err
}

// layers are the sources consulted for one key, highest precedence first.
type layers struct {
	flags  map[string]string
	env    lookup
	config lookup
}

type lookup interface {
	IsSet(key string) bool
	Get(key string) any
}

func (l layers) resolve(s Setting) (ResolvedValue, bool) {
	rv := ResolvedValue{Key: s.Key, Shadowed: make(map[ConfigSource]any)}
	candidates := []struct {
		source ConfigSource
		value  any
		ok     bool
	}{
		{SourceFlag, l.flags[s.Key], hasKey(l.flags, s.Key)},
		{SourceEnv, getOrNil(l.env, s.Key), l.env != nil && l.env.IsSet(s.Key)},
		{SourceConfig, getOrNil(l.config, s.Key), l.config != nil && l.config.IsSet(s.Key)},
		{SourceDefault, s.Default, s.Default != nil},
	}
	found := false
	for _, c := range candidates {
		if !c.ok {
			continue
		}
		if !found {
			rv.Value, rv.Source, found = c.value, c.source, true
			continue
		}
		if c.source != SourceDefault {
			rv.Shadowed[c.source] = c.value
		}
	}
	return rv, found
}

func hasKey(m map[string]string, key string) bool {
	_, ok := m[key]
	return ok
}

func getOrNil(l lookup, key string) any {
	if l == nil {
		return nil
	}
	return l.Get(key)
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", redact(v.Key, v.Value),
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", redact(v.Key, shadowed),
			)
		}
	}
}

func redact(key string, value any) any {
	if secretKeys[key] && value != "" && value != nil {
		return "********"
	}
	return value
}
