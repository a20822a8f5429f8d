package asm

import (
	"github.com/pkg/errors"
)

var ErrStepLimit = errors.New("step limit reached")

// Action records one executed OpAction statement.
type Action struct {
	PC   int
	Text string
}

// Machine executes a Program's compare-and-branch statements. Flags follow
// a signed compare of register minus immediate.
type Machine struct {
	prog *Program

	Regs map[string]int
	PC   int

	Z bool
	N bool

	Halted  bool
	Steps   int
	Actions []Action
}

func NewMachine(p *Program) *Machine {
	return &Machine{
		prog: p,
		Regs: make(map[string]int),
	}
}

func (m *Machine) Set(reg string, v int) {
	m.Regs[normalizeRegister(reg)] = v
}

// Reset rewinds to the first statement and clears flags and actions;
// registers are kept.
func (m *Machine) Reset() {
	m.PC = 0
	m.Z, m.N = false, false
	m.Halted = false
	m.Steps = 0
	m.Actions = nil
}

// Current returns the statement about to execute.
func (m *Machine) Current() (Statement, bool) {
	if m.PC < 0 || m.PC >= len(m.prog.Statements) {
		return Statement{}, false
	}
	return m.prog.Statements[m.PC], true
}

func (m *Machine) Step() error {
	if m.Halted {
		return nil
	}
	st, ok := m.Current()
	if !ok {
		m.Halted = true
		return nil
	}
	m.Steps++

	switch st.Op {
	case OpCmp:
		v, ok := m.Regs[st.Reg]
		if !ok {
			return errors.Errorf("register '%s' read before set on line %d", st.Reg, st.Line)
		}
		result := v - st.Imm
		m.Z = result == 0
		m.N = result < 0
		m.PC++

	case OpJL:
		m.branch(st, m.N)

	case OpJG:
		m.branch(st, !m.N && !m.Z)

	case OpJMP:
		m.branch(st, true)

	default:
		m.Actions = append(m.Actions, Action{PC: m.PC, Text: st.Text})
		m.PC++
	}

	if m.PC >= len(m.prog.Statements) {
		m.Halted = true
	}
	return nil
}

func (m *Machine) branch(st Statement, taken bool) {
	if taken {
		m.PC = st.Target
		return
	}
	m.PC++
}

// Run steps until the machine halts or limit steps have executed.
func (m *Machine) Run(limit int) error {
	for !m.Halted {
		if m.Steps >= limit {
			return ErrStepLimit
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}
