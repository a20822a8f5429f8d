package ladder

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

// FoundData is what the found action template is executed with.
type FoundData struct {
	Value    int
	ID       int
	Register string
}

type emitter struct {
	out      strings.Builder
	register string
	found    *template.Template
	raw      string
	base     int
}

func newEmitter(opts Options) (*emitter, error) {
	e := &emitter{
		register: opts.Register,
		base:     opts.LabelBase,
	}
	if opts.RawFound {
		e.raw = opts.Found
		return e, nil
	}
	tmpl, err := template.New("found").Option("missingkey=error").Parse(opts.Found)
	if err != nil {
		return nil, errors.Wrap(err, "parse found action")
	}
	e.found = tmpl
	return e, nil
}

// action expands the found action for one node.
func (e *emitter) action(n *Node) (string, error) {
	if e.found == nil {
		return e.raw, nil
	}
	var sb strings.Builder
	data := FoundData{Value: n.Pivot, ID: n.ID, Register: e.register}
	if err := e.found.Execute(&sb, data); err != nil {
		return "", errors.Wrapf(err, "found action for value %d", n.Pivot)
	}
	return sb.String(), nil
}

func (e *emitter) line(format string, args ...any) {
	fmt.Fprintf(&e.out, format+"\n", args...)
}

func (e *emitter) label(id int) int {
	return e.base + id
}

// Render returns the program as GAS source in its current stage. Only a
// resolved program yields text that assembles.
func (p *Program) Render(opts Options) (string, error) {
	e, err := newEmitter(opts.withDefaults())
	if err != nil {
		return "", err
	}
	for _, n := range p.Nodes {
		if err := e.node(p, n); err != nil {
			return "", err
		}
	}
	return e.out.String(), nil
}

// RenderTo writes the rendered program to w. Nothing is written if
// rendering fails.
func (p *Program) RenderTo(w io.Writer, opts Options) error {
	text, err := p.Render(opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return errors.Wrap(err, "write ladder")
}

func (e *emitter) node(p *Program, n *Node) error {
	e.line("%d:\t\tcmp $%d,%s", e.label(n.ID), n.Pivot, e.register)
	for _, br := range n.Branches() {
		target, err := e.target(p.stage, n, br)
		if err != nil {
			return err
		}
		e.line("\t\t%s\t\t%s", br.Cond.Mnemonic(), target)
	}

	action, err := e.action(n)
	if err != nil {
		return err
	}
	if text := strings.TrimRight(action, "\n"); text != "" {
		for _, l := range strings.Split(text, "\n") {
			e.line("\t\t%s", l)
		}
	}

	e.line("\t\tjmp\t\t%s", e.exit(p))
	return nil
}

// target spells a branch operand for the given stage. The deferred and
// marked spellings are the intermediate tokens of the two resolution
// passes; they are only useful for inspecting the passes.
func (e *emitter) target(stage Stage, n *Node, br *Branch) (string, error) {
	switch stage {
	case StageDeferred:
		return fmt.Sprintf("%s:%d::o%d:", br.Cond.Mnemonic(), br.TargetPivot, n.ID), nil
	case StageMarked:
		return fmt.Sprintf(":%d:o%d:", br.Target, n.ID), nil
	}
	if br.Target == unresolved || br.Dir == 0 {
		return "", &UnresolvedReferenceError{Refs: []Reference{{Origin: n.ID, Cond: br.Cond, Pivot: br.TargetPivot}}}
	}
	return fmt.Sprintf("%d%c", e.label(br.Target), br.Dir), nil
}

func (e *emitter) exit(p *Program) string {
	if p.stage != StageResolved {
		return "out"
	}
	return fmt.Sprintf("%d%c", e.label(p.Exit.Target), p.Exit.Dir)
}
