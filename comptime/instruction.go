package comptime

// Opcode is the closed sum of bytecode operations, per spec.md §3/§4.C.
// The source language's instruction set runs to roughly 544 variants
// across these categories; this repo implements a small representative
// set of opcodes per category, the ones listed below (see SPEC_FULL.md §5) —
// the dispatch loop, side-table wiring, and payload shape are identical
// for every unimplemented sibling in the same category, so adding one is
// a mechanical repeat rather than new design work.
type Opcode uint16

const (
	OpNop Opcode = iota

	// Constants of each scalar width (spec.md §4.C).
	OpConstI1
	OpConstI8
	OpConstI16
	OpConstI32
	OpConstI64
	OpConstF32
	OpConstF64

	// Typed load/store with explicit endianness.
	OpLoadI32LE
	OpLoadI32BE
	OpStoreI32LE
	OpStoreI32BE

	// Width-directed integer casts.
	OpZExt
	OpSExt
	OpTrunc

	// Bidirectional float/int conversion.
	OpIntToFloat
	OpFloatToInt

	// Arithmetic: unchecked and checked forms.
	OpAddI32
	OpAddI32Checked
	OpSubI32
	OpSubI32Checked
	OpMulI32
	OpMulI32Checked
	OpDivI32
	OpDivI32Checked
	OpNegI32Checked // negation of INT_MIN overflows, per spec.md §9
	OpAddF64
	OpAddF64Checked // checked float variants catch NaN/Inf production

	// Comparison.
	OpCmpEqI32
	OpCmpLtI32

	// Bitwise / shift.
	OpAndI32
	OpOrI32
	OpXorI32
	OpShlI32
	OpShrI32

	// IEEE-754 transcendentals, with a checked variant for domain errors.
	OpSqrtF64
	OpSqrtF64Checked

	// Bit-manipulation primitives.
	OpPopcountI32
	OpClzI32
	OpCtzI32
	OpByteSwapI32
	OpBitReverseI32

	// Address formation.
	OpGEPConst
	OpGEPArrayIndexS
	OpGEPArrayIndexU
	OpPtrAdd // one-past-the-end-preserving add

	// Allocation (spec.md §4.E "Allocation/free").
	OpMalloc
	OpFree

	// Bulk memory.
	OpMemcpyConst
	OpMemsetZero
	OpCopyValues
	OpCopyOverlappingValues
	OpRelocateValues

	// Control flow.
	OpCallDirect
	OpCallIndirect
	OpJump
	OpJumpIf
	OpSwitchI32
	OpSwitchStr
	OpReturn
	OpReturnVoid
	OpUnreachable

	// Runtime checks.
	OpArrayBoundsCheckS32
	OpArrayBoundsCheckU32
	OpArrayBoundsCheckS64
	OpArrayBoundsCheckU64
	OpOptionalGetValueCheck
	OpSliceConstructionCheck
	OpStringConstructionCheck
	OpPointerArithmeticCheck
	OpPointerComparisonCheck
	OpFloatOrderingCheck

	// Lifetime markers.
	OpStartLifetime
	OpEndLifetime

	// Diagnostics opcodes.
	OpError
	OpPrint
	OpDiagnosticStr
	OpIsOptionSet

	opcodeCount
)

var opcodeNames = [...]string{
	OpNop:                     "nop",
	OpConstI1:                 "const.i1",
	OpConstI8:                 "const.i8",
	OpConstI16:                "const.i16",
	OpConstI32:                "const.i32",
	OpConstI64:                "const.i64",
	OpConstF32:                "const.f32",
	OpConstF64:                "const.f64",
	OpLoadI32LE:               "load.i32.le",
	OpLoadI32BE:               "load.i32.be",
	OpStoreI32LE:              "store.i32.le",
	OpStoreI32BE:              "store.i32.be",
	OpZExt:                    "zext",
	OpSExt:                    "sext",
	OpTrunc:                   "trunc",
	OpIntToFloat:              "int_to_float",
	OpFloatToInt:              "float_to_int",
	OpAddI32:                  "add.i32",
	OpAddI32Checked:           "add.i32.checked",
	OpSubI32:                  "sub.i32",
	OpSubI32Checked:           "sub.i32.checked",
	OpMulI32:                  "mul.i32",
	OpMulI32Checked:           "mul.i32.checked",
	OpDivI32:                  "div.i32",
	OpDivI32Checked:           "div.i32.checked",
	OpNegI32Checked:           "neg.i32.checked",
	OpAddF64:                  "add.f64",
	OpAddF64Checked:           "add.f64.checked",
	OpCmpEqI32:                "cmp.eq.i32",
	OpCmpLtI32:                "cmp.lt.i32",
	OpAndI32:                  "and.i32",
	OpOrI32:                   "or.i32",
	OpXorI32:                  "xor.i32",
	OpShlI32:                  "shl.i32",
	OpShrI32:                  "shr.i32",
	OpSqrtF64:                 "sqrt.f64",
	OpSqrtF64Checked:          "sqrt.f64.checked",
	OpPopcountI32:             "popcount.i32",
	OpClzI32:                  "clz.i32",
	OpCtzI32:                  "ctz.i32",
	OpByteSwapI32:             "byteswap.i32",
	OpBitReverseI32:           "bitreverse.i32",
	OpGEPConst:                "gep.const",
	OpGEPArrayIndexS:          "gep.array.s",
	OpGEPArrayIndexU:          "gep.array.u",
	OpPtrAdd:                  "ptr.add",
	OpMalloc:                  "malloc",
	OpFree:                    "free",
	OpMemcpyConst:             "memcpy.const",
	OpMemsetZero:              "memset.zero",
	OpCopyValues:              "copy_values",
	OpCopyOverlappingValues:   "copy_overlapping_values",
	OpRelocateValues:          "relocate_values",
	OpCallDirect:              "call",
	OpCallIndirect:            "call.indirect",
	OpJump:                    "jump",
	OpJumpIf:                  "jump.if",
	OpSwitchI32:               "switch.i32",
	OpSwitchStr:               "switch.str",
	OpReturn:                  "return",
	OpReturnVoid:              "return.void",
	OpUnreachable:             "unreachable",
	OpArrayBoundsCheckS32:     "check.bounds.s32",
	OpArrayBoundsCheckU32:     "check.bounds.u32",
	OpArrayBoundsCheckS64:     "check.bounds.s64",
	OpArrayBoundsCheckU64:     "check.bounds.u64",
	OpOptionalGetValueCheck:   "check.optional_get_value",
	OpSliceConstructionCheck:  "check.slice_construction",
	OpStringConstructionCheck: "check.string_construction",
	OpPointerArithmeticCheck:  "check.pointer_arithmetic",
	OpPointerComparisonCheck:  "check.pointer_comparison",
	OpFloatOrderingCheck:      "check.float_ordering",
	OpStartLifetime:           "lifetime.start",
	OpEndLifetime:             "lifetime.end",
	OpError:                   "error",
	OpPrint:                   "print",
	OpDiagnosticStr:           "diagnostic_str",
	OpIsOptionSet:             "is_option_set",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "?unknown-opcode?"
}

// IsTerminator reports whether op ends a basic block, per spec.md's
// Terminator glossary entry.
func (op Opcode) IsTerminator() bool {
	switch op {
	case OpJump, OpJumpIf, OpSwitchI32, OpSwitchStr, OpReturn, OpReturnVoid, OpUnreachable:
		return true
	default:
		return false
	}
}

// Instruction is a tagged variant over Opcode. Operands are indices into
// the current frame's dense value-slot array (spec.md §3); Imm carries the
// opcode's inline immediate (a constant, shift amount, array index, or
// similar); SideTable indexes into the function side-table appropriate for
// Op, or -1 if the opcode needs none. The source models a 1-byte-tag +
// 23-byte-payload packed struct (spec.md §9); this representation keeps
// the same "fixed shape, no runtime variant tag beyond Op" property
// without hand-packing bytes, which Go's dispatch doesn't reward.
type Instruction struct {
	Op        Opcode
	Operands  [3]int32
	Imm       uint64
	SideTable int32
}

// NewInstruction builds an Instruction with all side-table/operand slots
// defaulted to "unused".
func NewInstruction(op Opcode) Instruction {
	return Instruction{Op: op, Operands: [3]int32{-1, -1, -1}, SideTable: -1}
}

func (i Instruction) String() string {
	return i.Op.String()
}
