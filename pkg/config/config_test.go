package config

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasladder/pkg/ladder"
)

const sampleConfig = `
log_level: debug
ladders:
  - name: insert_byte
    found: "insert_byte {{.Value}},\\c"
    out: insert_byte.S
  - name: get_w
    min: 0
    max: 63
    register: ecx
    label_base: 1000
`

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/gasladder.yaml", []byte(sampleConfig), 0o644))

	f, err := Load(fs, "/etc/gasladder.yaml")
	require.NoError(t, err)
	require.NotNil(t, f.LogLevel)
	assert.Equal(t, "debug", *f.LogLevel)
	require.Len(t, f.Ladders, 2)

	assert.Equal(t, "insert_byte", f.Ladders[0].Name)
	assert.Nil(t, f.Ladders[0].Min)
	assert.Equal(t, `insert_byte {{.Value}},\c`, *f.Ladders[0].Found)
	assert.Equal(t, "insert_byte.S", f.Ladders[0].OutPath())

	assert.Equal(t, 63, *f.Ladders[1].Max)
	assert.Equal(t, "ecx", *f.Ladders[1].Register)
	assert.Equal(t, 1000, *f.Ladders[1].LabelBase)
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := Load(fs, "missing.yaml")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("ladders:\n  - nmae: typo\n"), 0o644))
	_, err = Load(fs, "bad.yaml")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "empty.yaml", nil, 0o644))
	f, err := Load(fs, "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, f.Ladders)
}

func TestFromEnv(t *testing.T) {
	g, l, err := FromEnv(lookupFrom(map[string]string{
		"GASLADDER_MAX":       "15",
		"GASLADDER_REGISTER":  "edx",
		"GASLADDER_LOG_LEVEL": "warn",
		"GASLADDER_NO_COLOR":  "true",
	}))
	require.NoError(t, err)
	assert.Equal(t, "warn", *g.LogLevel)
	assert.True(t, *g.NoColor)
	assert.Nil(t, l.Min)
	assert.Equal(t, 15, *l.Max)
	assert.Equal(t, "edx", *l.Register)
	assert.Nil(t, l.Found)

	_, _, err = FromEnv(lookupFrom(map[string]string{"GASLADDER_MIN": "low"}))
	assert.Error(t, err)
}

func TestConsolidatePrecedence(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "c.yaml", []byte(sampleConfig), 0o644))
	file, err := Load(fs, "c.yaml")
	require.NoError(t, err)

	envGlobal, env, err := FromEnv(lookupFrom(map[string]string{
		"GASLADDER_REGISTER":  "edx",
		"GASLADDER_LOG_LEVEL": "info",
	}))
	require.NoError(t, err)

	flagGlobal := Global{LogLevel: stringPtr("error")}
	flags := Ladder{LabelBase: intPtr(7)}

	cfg := Consolidate(file, envGlobal, env, flagGlobal, flags)
	require.Len(t, cfg.Ladders, 2)
	assert.Equal(t, "error", *cfg.LogLevel)
	assert.Nil(t, cfg.NoColor)

	first := cfg.Ladders[0].Options(nil)
	assert.Equal(t, "insert_byte", first.Name)
	assert.Equal(t, ladder.DefaultDomain, first.Domain)
	assert.Equal(t, "edx", first.Register, "env overrides default")
	assert.Equal(t, 7, first.LabelBase, "flags override everything")
	assert.Equal(t, `insert_byte {{.Value}},\c`, first.Found)

	second := cfg.Ladders[1].Options(nil)
	assert.Equal(t, ladder.Domain{Min: 0, Max: 63}, second.Domain)
	assert.Equal(t, "edx", second.Register, "env overrides file")
	assert.Equal(t, 7, second.LabelBase)
	assert.Equal(t, ladder.DefaultFound, second.Found)

	require.NoError(t, cfg.Validate())
}

func TestConsolidateWithoutFile(t *testing.T) {
	cfg := Consolidate(File{}, Global{}, Ladder{}, Global{}, Ladder{Max: intPtr(3)})
	require.Len(t, cfg.Ladders, 1)
	opts := cfg.Ladders[0].Options(nil)
	assert.Equal(t, ladder.Domain{Min: 0, Max: 3}, opts.Domain)
	assert.Equal(t, ladder.DefaultRegister, opts.Register)
	assert.Equal(t, "", cfg.Ladders[0].OutPath())
}

func TestRawFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	yaml := "ladders:\n  - found: \"mac {{x}\"\n    raw_found: true\n  - found: \"mac {{.Value}}\"\n"
	require.NoError(t, afero.WriteFile(fs, "raw.yaml", []byte(yaml), 0o644))
	file, err := Load(fs, "raw.yaml")
	require.NoError(t, err)

	cfg := Consolidate(file, Global{}, Ladder{}, Global{}, Ladder{})
	require.Len(t, cfg.Ladders, 2)
	assert.True(t, cfg.Ladders[0].Options(nil).RawFound)
	assert.False(t, cfg.Ladders[1].Options(nil).RawFound)

	_, env, err := FromEnv(lookupFrom(map[string]string{"GASLADDER_RAW_FOUND": "true"}))
	require.NoError(t, err)
	cfg = Consolidate(file, Global{}, env, Global{}, Ladder{})
	assert.True(t, cfg.Ladders[1].Options(nil).RawFound, "env overrides file")
}

func TestValidate(t *testing.T) {
	cfg := Config{Ladders: []Ladder{{Min: intPtr(9), Max: intPtr(1)}}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ladder.ErrInvalidDomain))
	assert.Contains(t, err.Error(), "ladder #0")

	cfg = Config{Ladders: []Ladder{
		{Name: "a", Out: stringPtr("x.S")},
		{Name: "b", Out: stringPtr("x.S")},
	}}
	assert.EqualError(t, cfg.Validate(), "ladders a and b both write x.S")
}
