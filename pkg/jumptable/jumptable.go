// Package jumptable emits dense relative jump tables for GAS macros: a
// .rodata array of 32-bit offsets from the table to one local block per
// entry, followed by the blocks themselves. Every block runs one macro
// invocation and jumps to a shared end label.
//
// All labels carry the \@ macro counter so a table can be expanded more
// than once in the same file.
package jumptable

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var ErrUnknownVariant = errors.New("unknown jump table variant")

// Variant describes one table. Entry returns the macro invocation for entry
// i; mm is a scratch MMX register counter shared across a single run.
type Variant struct {
	Name    string
	Comment string
	Table   string
	First   int
	Count   int
	Entry   func(i int, mm *int) string
}

// End is the number of the label every block jumps to.
func (v Variant) End() int {
	return v.First + v.Count
}

func (v Variant) label(n int) string {
	return fmt.Sprintf(".L%d\\@", n)
}

func (v Variant) tableLabel() string {
	return v.Table + "\\@"
}

// Generate writes the table for v to w.
func Generate(w io.Writer, v Variant) error {
	var out strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&out, format+"\n", args...)
	}

	line("/* %s */", v.Comment)
	line(".section .rodata")
	line(".align 4")
	line("%s:", v.tableLabel())
	for n := v.First; n <= v.End(); n++ {
		line(".long\t%s-%s", v.label(n), v.tableLabel())
	}
	line(".text")

	mm := 3
	for i := 0; i < v.Count; i++ {
		line("%s:\t%s", v.label(v.First+i), v.Entry(i, &mm))
		line("\tjmp\t\t%s", v.label(v.End()))
	}
	line("")
	line("%s:", v.label(v.End()))

	_, err := io.WriteString(w, out.String())
	return errors.Wrapf(err, "write %s table", v.Name)
}

// Lookup finds a variant by name.
func Lookup(name string) (Variant, error) {
	for _, v := range variants {
		if v.Name == name {
			return v, nil
		}
	}
	return Variant{}, errors.Wrapf(ErrUnknownVariant, "%q (known: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the variant names in sorted order.
func Names() []string {
	names := make([]string, 0, len(variants))
	for _, v := range variants {
		names = append(names, v.Name)
	}
	sort.Strings(names)
	return names
}
