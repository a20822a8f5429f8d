package jumptable

import "fmt"

// The SSE2 tables keep the message schedule in xmm0-xmm14 with xmm15 as
// scratch; entries past the last xmm slot spill into mm4 and mm5.
var variants = []Variant{
	{
		Name:    "insert-byte-sse2",
		Comment: "Insertion jump table for SSE2",
		Table:   "insert_byte_sse2_jt",
		First:   2000,
		Count:   256,
		Entry: func(i int, mm *int) string {
			if i <= 239 {
				return fmt.Sprintf("insert_byte %d,\\c,xmm%d,xmm15", i%16, i/16)
			}
			if i%8 == 0 {
				*mm++
			}
			return fmt.Sprintf("insert_byte_alt %d,\\c,mm%d,\\gpr0q,\\gpr0l,\\gpr1q", i%8, *mm)
		},
	},
	{
		Name:    "insert-byte-sse4.1",
		Comment: "Insertion jump table for SSE4.1",
		Table:   "insert_byte_sse4_1_jt",
		First:   2500,
		Count:   256,
		Entry: func(i int, _ *int) string {
			return fmt.Sprintf("insert_byte %d,\\c,xmm%d", i%16, i/16)
		},
	},
	{
		Name:    "get-w-sse4.1",
		Comment: "Get wi jump table for SSE4.1",
		Table:   "get_w_sse4_1_jt",
		First:   3000,
		Count:   64,
		Entry: func(i int, _ *int) string {
			return fmt.Sprintf("_get_w \\w,%d,xmm%d", i%4, i/4)
		},
	},
	{
		Name:    "set-w-sse4.1",
		Comment: "Set wi jump table for SSE4.1",
		Table:   "set_w_sse4_1_jt",
		First:   3500,
		Count:   64,
		Entry: func(i int, _ *int) string {
			return fmt.Sprintf("_set_w \\w,%d,xmm%d", i%4, i/4)
		},
	},
	{
		Name:    "get-w-sse2",
		Comment: "Get wi jump table for SSE2",
		Table:   "get_w_sse2_jt",
		First:   4000,
		Count:   64,
		Entry: func(i int, mm *int) string {
			if i <= 59 {
				return fmt.Sprintf("_get_w \\w,%d,xmm%d,xmm15", (i%4)*4, i/4)
			}
			if i%2 == 0 {
				*mm++
				return fmt.Sprintf("_get_w_alt_c0 \\w,mm%d", *mm)
			}
			return fmt.Sprintf("_get_w_alt_c1 \\w,mm%d,\\gpr0q,\\gpr0l", *mm)
		},
	},
	{
		Name:    "set-w-sse2",
		Comment: "Set wi jump table for SSE2",
		Table:   "set_w_sse2_jt",
		First:   4500,
		Count:   64,
		Entry: func(i int, mm *int) string {
			if i <= 59 {
				return fmt.Sprintf("_set_w \\w,%d,xmm%d,xmm15,\\gpr0l", (i%4)*4, i/4)
			}
			half := 0
			if i%2 == 0 {
				*mm++
			} else {
				half = 32
			}
			return fmt.Sprintf("_set_w_alt \\w,%d,mm%d,\\gpr0q,\\gpr0l,\\gpr1q", half, *mm)
		},
	},
}
