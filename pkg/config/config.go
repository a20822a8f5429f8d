// Package config consolidates ladder settings from defaults, a YAML file,
// GASLADDER_* environment variables and command line flags, in that order
// of increasing precedence.
package config

import (
	"bytes"
	"io"
	"strconv"

	"github.com/mstoykov/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"gasladder/pkg/ladder"
)

// Ladder holds the settings of one generated ladder. Nil fields are unset
// and do not override lower-precedence sources.
type Ladder struct {
	Name      string  `yaml:"name" ignored:"true"`
	Min       *int    `yaml:"min" envconfig:"GASLADDER_MIN"`
	Max       *int    `yaml:"max" envconfig:"GASLADDER_MAX"`
	Register  *string `yaml:"register" envconfig:"GASLADDER_REGISTER"`
	Found     *string `yaml:"found" envconfig:"GASLADDER_FOUND"`
	RawFound  *bool   `yaml:"raw_found" envconfig:"GASLADDER_RAW_FOUND"`
	LabelBase *int    `yaml:"label_base" envconfig:"GASLADDER_LABEL_BASE"`
	Out       *string `yaml:"out" envconfig:"GASLADDER_OUT"`
}

// Global holds settings that are not per ladder.
type Global struct {
	LogLevel *string `yaml:"log_level" envconfig:"GASLADDER_LOG_LEVEL"`
	NoColor  *bool   `yaml:"no_color" envconfig:"GASLADDER_NO_COLOR"`
}

// File is the layout of a YAML config file.
type File struct {
	Global  `yaml:",inline"`
	Ladders []Ladder `yaml:"ladders"`
}

// Config is the consolidated result.
type Config struct {
	Global
	Ladders []Ladder
}

func intPtr(v int) *int          { return &v }
func stringPtr(v string) *string { return &v }
func boolPtr(v bool) *bool       { return &v }

// Default is a byte-wide ladder on eax that expands INSERT() per value,
// written to stdout.
func Default() Ladder {
	return Ladder{
		Min:       intPtr(ladder.DefaultDomain.Min),
		Max:       intPtr(ladder.DefaultDomain.Max),
		Register:  stringPtr(ladder.DefaultRegister),
		Found:     stringPtr(ladder.DefaultFound),
		RawFound:  boolPtr(false),
		LabelBase: intPtr(0),
		Out:       stringPtr(""),
	}
}

// Apply returns l with every field set in o copied over it.
func (l Ladder) Apply(o Ladder) Ladder {
	if o.Name != "" {
		l.Name = o.Name
	}
	if o.Min != nil {
		l.Min = o.Min
	}
	if o.Max != nil {
		l.Max = o.Max
	}
	if o.Register != nil {
		l.Register = o.Register
	}
	if o.Found != nil {
		l.Found = o.Found
	}
	if o.RawFound != nil {
		l.RawFound = o.RawFound
	}
	if o.LabelBase != nil {
		l.LabelBase = o.LabelBase
	}
	if o.Out != nil {
		l.Out = o.Out
	}
	return l
}

func (g Global) Apply(o Global) Global {
	if o.LogLevel != nil {
		g.LogLevel = o.LogLevel
	}
	if o.NoColor != nil {
		g.NoColor = o.NoColor
	}
	return g
}

// Options converts a consolidated ladder into generator options. Unset
// fields fall back to Default.
func (l Ladder) Options(log logrus.FieldLogger) ladder.Options {
	l = Default().Apply(l)
	return ladder.Options{
		Name:      l.Name,
		Domain:    ladder.Domain{Min: *l.Min, Max: *l.Max},
		Register:  *l.Register,
		Found:     *l.Found,
		RawFound:  *l.RawFound,
		LabelBase: *l.LabelBase,
		Logger:    log,
	}
}

// OutPath is where the ladder is written; empty means stdout.
func (l Ladder) OutPath() string {
	if l.Out == nil {
		return ""
	}
	return *l.Out
}

// Load reads a YAML config file. Unknown keys are rejected.
func Load(fs afero.Fs, path string) (File, error) {
	var f File
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return f, errors.Wrapf(err, "read config %s", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return f, errors.Wrapf(err, "parse config %s", path)
	}
	return f, nil
}

// FromEnv reads GASLADDER_* variables through lookup, which is usually
// os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Global, Ladder, error) {
	var g Global
	var l Ladder
	if err := envconfig.Process("", &g, lookup); err != nil {
		return g, l, errors.Wrap(err, "environment")
	}
	if err := envconfig.Process("", &l, lookup); err != nil {
		return g, l, errors.Wrap(err, "environment")
	}
	return g, l, nil
}

// Consolidate merges the sources. A file without ladders yields a single
// ladder; otherwise env and flags override every ladder in the file.
func Consolidate(file File, envGlobal Global, env Ladder, flagGlobal Global, flags Ladder) Config {
	cfg := Config{Global: file.Global.Apply(envGlobal).Apply(flagGlobal)}

	base := []Ladder{{}}
	if len(file.Ladders) > 0 {
		base = file.Ladders
	}
	for _, fl := range base {
		cfg.Ladders = append(cfg.Ladders, Default().Apply(fl).Apply(env).Apply(flags))
	}
	return cfg
}

// Validate checks every ladder's domain and rejects two ladders writing to
// the same file.
func (c Config) Validate() error {
	outs := make(map[string]string)
	for i, l := range c.Ladders {
		name := l.Name
		if name == "" {
			name = "#" + strconv.Itoa(i)
		}
		opts := l.Options(nil)
		if err := opts.Domain.Validate(); err != nil {
			return errors.Wrapf(err, "ladder %s", name)
		}
		out := l.OutPath()
		if out == "" {
			continue
		}
		if prev, dup := outs[out]; dup {
			return errors.Errorf("ladders %s and %s both write %s", prev, name, out)
		}
		outs[out] = name
	}
	return nil
}
