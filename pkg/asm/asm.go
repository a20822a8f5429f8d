// Package asm reads the subset of GNU assembler syntax that dispatch
// ladders are written in: numeric local labels, cmp against an immediate,
// jl/jg/jmp to local or named labels, and opaque action statements such as
// macro invocations.
package asm

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

type Op int

const (
	OpCmp Op = iota
	OpJL
	OpJG
	OpJMP
	// OpAction is any statement the reader does not interpret.
	OpAction
)

var branchOps = map[string]Op{
	"JL":  OpJL,
	"JG":  OpJG,
	"JMP": OpJMP,
}

func (op Op) String() string {
	switch op {
	case OpCmp:
		return "cmp"
	case OpJL:
		return "jl"
	case OpJG:
		return "jg"
	case OpJMP:
		return "jmp"
	default:
		return "action"
	}
}

// Statement is one instruction. Target is the index of the statement a
// branch lands on; len(Statements) means the label sits past the end.
type Statement struct {
	Line   int
	Op     Op
	Text   string
	Reg    string
	Imm    int
	Ref    string
	Target int
}

type Program struct {
	Statements []Statement
	// Local maps a numeric label to the statement index of each of its
	// definitions, in source order.
	Local map[int][]int
	Named map[string]int
}

type Assembler struct {
	local map[int][]int
	named map[string]int
}

type parsedLine struct {
	lineNo   int
	local    []int
	named    []string
	mnemonic string
	operands []string
	text     string
}

func NewAssembler() *Assembler {
	return &Assembler{
		local: make(map[int][]int),
		named: make(map[string]int),
	}
}

// Assemble reads code and resolves every branch to a statement index.
func Assemble(code string) (*Program, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) (*Program, error) {
	lines := strings.Split(code, "\n")

	stmts, err := a.pass1(lines)
	if err != nil {
		return nil, err
	}

	if err := a.pass2(stmts); err != nil {
		return nil, err
	}
	return &Program{Statements: stmts, Local: a.local, Named: a.named}, nil
}

// pass1 records where every label points and decodes each statement.
func (a *Assembler) pass1(lines []string) ([]Statement, error) {
	var stmts []Statement

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, err
		}

		for _, n := range p.local {
			a.local[n] = append(a.local[n], len(stmts))
		}
		for _, name := range p.named {
			if _, exists := a.named[name]; exists {
				return nil, errors.Errorf("duplicate label '%s' on line %d", name, lineNo)
			}
			a.named[name] = len(stmts)
		}

		if p.mnemonic == "" {
			continue
		}

		st, err := decode(p)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}

	return stmts, nil
}

// pass2 resolves branch operands against the labels found in pass1.
func (a *Assembler) pass2(stmts []Statement) error {
	for i := range stmts {
		st := &stmts[i]
		if st.Op != OpJL && st.Op != OpJG && st.Op != OpJMP {
			continue
		}
		target, err := a.resolve(st.Ref, i, st.Line)
		if err != nil {
			return err
		}
		st.Target = target
	}
	return nil
}

// resolve follows GAS local label rules: Nf is the first definition of N
// after the referencing statement, Nb the last one at or before it.
func (a *Assembler) resolve(ref string, at int, lineNo int) (int, error) {
	if n, dir, ok := parseLocalRef(ref); ok {
		defs := a.local[n]
		switch dir {
		case 'f':
			for _, pos := range defs {
				if pos > at {
					return pos, nil
				}
			}
		case 'b':
			for j := len(defs) - 1; j >= 0; j-- {
				if defs[j] <= at {
					return defs[j], nil
				}
			}
		}
		return 0, errors.Errorf("undefined local label '%s' on line %d", ref, lineNo)
	}

	if pos, ok := a.named[ref]; ok {
		return pos, nil
	}
	if isIdentifier(ref) {
		return 0, errors.Errorf("undefined label '%s' on line %d", ref, lineNo)
	}
	return 0, errors.Errorf("invalid branch target '%s' on line %d", ref, lineNo)
}

func decode(p parsedLine) (Statement, error) {
	st := Statement{Line: p.lineNo, Text: p.text, Op: OpAction}

	if p.mnemonic == "CMP" {
		if len(p.operands) != 2 {
			return st, errors.Errorf("cmp expects 2 operands on line %d", p.lineNo)
		}
		imm, err := parseImmediate(p.operands[0], p.lineNo)
		if err != nil {
			return st, err
		}
		st.Op = OpCmp
		st.Imm = imm
		st.Reg = normalizeRegister(p.operands[1])
		if !isIdentifier(st.Reg) {
			return st, errors.Errorf("invalid register '%s' on line %d", p.operands[1], p.lineNo)
		}
		return st, nil
	}

	if op, ok := branchOps[p.mnemonic]; ok {
		if len(p.operands) != 1 {
			return st, errors.Errorf("%s expects 1 operand on line %d", strings.ToLower(p.mnemonic), p.lineNo)
		}
		st.Op = op
		st.Ref = p.operands[0]
		return st, nil
	}

	return st, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		// a label is glued to its colon; "jl  x:y" is an operand
		beforeColon := line[:colon]
		if strings.ContainsAny(beforeColon, " \t(") {
			break
		}

		if n, err := strconv.Atoi(beforeColon); err == nil {
			if n < 0 {
				return p, errors.Errorf("invalid local label '%s' on line %d", beforeColon, lineNo)
			}
			p.local = append(p.local, n)
		} else if isIdentifier(beforeColon) {
			p.named = append(p.named, beforeColon)
		} else {
			return p, errors.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	p.text = line
	fields := strings.Fields(line)
	p.mnemonic = strings.ToUpper(fields[0])
	rest := strings.TrimSpace(line[len(fields[0]):])
	if rest != "" {
		for _, op := range strings.Split(rest, ",") {
			p.operands = append(p.operands, strings.TrimSpace(op))
		}
	}

	return p, nil
}

func stripComments(line string) string {
	if cut := strings.IndexByte(line, '#'); cut >= 0 {
		return line[:cut]
	}
	return line
}

func parseImmediate(token string, lineNo int) (int, error) {
	if !strings.HasPrefix(token, "$") {
		return 0, errors.Errorf("expected immediate operand on line %d: %s", lineNo, token)
	}
	v, err := strconv.ParseInt(token[1:], 0, 64)
	if err != nil {
		return 0, errors.Errorf("invalid immediate '%s' on line %d", token, lineNo)
	}
	return int(v), nil
}

// parseLocalRef splits "12f" into (12, 'f').
func parseLocalRef(ref string) (int, byte, bool) {
	if len(ref) < 2 {
		return 0, 0, false
	}
	dir := ref[len(ref)-1]
	if dir != 'f' && dir != 'b' {
		return 0, 0, false
	}
	n, err := strconv.Atoi(ref[:len(ref)-1])
	if err != nil || n < 0 {
		return 0, 0, false
	}
	return n, dir, true
}

func normalizeRegister(reg string) string {
	return strings.ToLower(strings.TrimPrefix(reg, "%"))
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' && r != '.' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return false
		}
	}

	return true
}
