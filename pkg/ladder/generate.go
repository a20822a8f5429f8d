package ladder

import (
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultRegister = "eax"
	DefaultFound    = "INSERT()"
)

// Options describes one ladder.
type Options struct {
	Name     string
	Domain   Domain
	Register string
	// Found is the action emitted for each value, a text/template over
	// FoundData. Empty means DefaultFound; a template that renders to
	// nothing, such as {{/* none */}}, emits no action.
	Found string
	// RawFound emits Found verbatim instead of parsing it as a template.
	RawFound  bool
	LabelBase int
	Logger    logrus.FieldLogger
}

// DefaultOptions dispatches on eax over a byte and expands INSERT() for
// every value.
func DefaultOptions() Options {
	return Options{
		Domain:   DefaultDomain,
		Register: DefaultRegister,
		Found:    DefaultFound,
	}
}

func (o Options) withDefaults() Options {
	if o.Register == "" {
		o.Register = DefaultRegister
	}
	if o.Found == "" {
		o.Found = DefaultFound
	}
	if o.Logger == nil {
		o.Logger = discardLogger()
	}
	return o
}

func (o Options) logger() logrus.FieldLogger {
	log := o.withDefaults().Logger
	if o.Name != "" {
		log = log.WithField("ladder", o.Name)
	}
	return log
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Result is the outcome of one generation run.
type Result struct {
	Name    string
	Program *Program
	Text    string
	Digest  uint64
}

// Generate builds, resolves and renders a ladder.
func Generate(opts Options) (*Result, error) {
	return GenerateStage(opts, StageResolved)
}

// GenerateStage is Generate stopped after the given resolution stage.
func GenerateStage(opts Options, stage Stage) (*Result, error) {
	opts = opts.withDefaults()
	log := opts.logger()

	log.Debug("building comparison tree")
	prog, err := buildWithLogger(opts.Domain, log)
	if err != nil {
		return nil, errors.Wrapf(err, "build ladder %q", opts.Name)
	}

	log.WithField("stage", stage).Debug("resolving local labels")
	if err := prog.ResolveTo(stage); err != nil {
		return nil, errors.Wrapf(err, "resolve ladder %q", opts.Name)
	}

	text, err := prog.Render(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "render ladder %q", opts.Name)
	}

	res := &Result{
		Name:    opts.Name,
		Program: prog,
		Text:    text,
		Digest:  xxhash.Sum64String(text),
	}
	log.WithFields(logrus.Fields{
		"nodes":  len(prog.Nodes),
		"size":   humanize.Bytes(uint64(len(text))),
		"digest": res.Digest,
	}).Debug("ladder generated")
	return res, nil
}
