package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Defaults(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	assert.NoError(t, v.Validate(DefaultConfig()))
}

func TestValidator_Constraints(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Dev.Addr = "localhost"
	cfg.Publish.Bucket = "Bad_Bucket"

	err = v.Validate(cfg)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "dev.addr")
	assert.Contains(t, fields, "publish.bucket")
}

func TestValidator_File(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		path := writeConfig(t, "outDir: build\ndev:\n  cacheSize: 10\n")
		assert.NoError(t, v.ValidateFile(path))
	})

	t.Run("empty", func(t *testing.T) {
		assert.NoError(t, v.ValidateFile(writeConfig(t, "")))
	})

	t.Run("unknown key", func(t *testing.T) {
		err := v.ValidateFile(writeConfig(t, "outdir: build\n"))
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "outdir", verrs[0].Field)
	})

	t.Run("wrong type", func(t *testing.T) {
		err := v.ValidateFile(writeConfig(t, "dev:\n  cacheSize: 0\nisProd: yes-please\n"))
		assert.ErrorContains(t, err, "dev.cacheSize")
		assert.ErrorContains(t, err, "isProd")
	})

	t.Run("bad yaml", func(t *testing.T) {
		err := v.ValidateFile(writeConfig(t, "a: [\n"))
		assert.ErrorContains(t, err, "invalid YAML")
	})
}
