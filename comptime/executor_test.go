package comptime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestVM() *VM {
	return NewVM(DefaultOptions(), 0)
}

func constI32Instr(imm uint32) Instruction {
	i := NewInstruction(OpConstI32)
	i.Imm = uint64(imm)
	return i
}

func returnInstr(slot int32) Instruction {
	i := NewInstruction(OpReturn)
	i.Operands[0] = slot
	return i
}

// Scenario: signed 32-bit addition overflow is reported but execution
// continues with the wrapped two's-complement result.
func TestSignedOverflowReportsAndContinues(t *testing.T) {
	vm := newTestVM()
	fn := &Function{
		Name: "overflow",
		Instructions: []Instruction{
			constI32Instr(0x7fffffff),
			func() Instruction {
				i := NewInstruction(OpAddI32Checked)
				i.Operands[0] = 0
				i.Imm = 1
				return i
			}(),
			returnInstr(1),
		},
	}

	result, returned := vm.Run(fn, nil)
	require.True(t, returned)
	require.True(t, vm.HasError())
	require.EqualValues(t, 0x80000000, uint32(result))
	require.Len(t, vm.Diagnostics(), 1)
	require.Contains(t, vm.Diagnostics()[0].Message, "overflow")
}

// Scenario: indexing one past an array's length forms a valid
// one-past-the-end handle (per DoGEP), but dereferencing it to store
// through it is rejected and the store never happens.
func TestArrayOnePastEndStoreIsRejected(t *testing.T) {
	vm := newTestVM()
	i32 := vm.Registry.InternBuiltin(BuiltinI32)
	arrT := vm.Registry.InternArray(i32, 4)

	fn := &Function{
		Name:    "array_oob",
		Allocas: []Alloca{{Type: arrT, AlwaysInitialized: true}},
		MemoryAccessCheckInfos: []MemoryAccessCheckInfo{
			{ElemType: arrT},
			{ElemType: i32},
		},
		Instructions: []Instruction{
			constI32Instr(4),
			func() Instruction {
				i := NewInstruction(OpGEPArrayIndexU)
				i.Operands[0] = 0
				i.Operands[1] = 1
				i.SideTable = 0
				return i
			}(),
			func() Instruction {
				i := NewInstruction(OpStoreI32LE)
				i.Operands[0] = 2
				i.Operands[1] = 1
				i.SideTable = 1
				return i
			}(),
			returnOrVoid(),
		},
	}

	_, returned := vm.Run(fn, nil)
	require.False(t, returned)
	require.True(t, vm.HasError())
	require.Len(t, vm.Diagnostics(), 1)
	require.Contains(t, vm.Diagnostics()[0].Message, "one-past-the-end")
}

func returnOrVoid() Instruction { return NewInstruction(OpReturnVoid) }

// Scenario: freeing the same heap allocation twice is reported as a
// double free, not silently accepted or crashed on.
func TestDoubleFreeIsReported(t *testing.T) {
	vm := newTestVM()
	i32 := vm.Registry.InternBuiltin(BuiltinI32)

	fn := &Function{
		Name: "double_free",
		MemoryAccessCheckInfos: []MemoryAccessCheckInfo{
			{ElemType: i32},
		},
		Instructions: []Instruction{
			func() Instruction {
				i := NewInstruction(OpMalloc)
				i.Imm = 1
				i.SideTable = 0
				return i
			}(),
			func() Instruction {
				i := NewInstruction(OpFree)
				i.Operands[0] = 0
				return i
			}(),
			func() Instruction {
				i := NewInstruction(OpFree)
				i.Operands[0] = 0
				return i
			}(),
			returnOrVoid(),
		},
	}

	_, returned := vm.Run(fn, nil)
	require.False(t, returned)
	require.True(t, vm.HasError())
	require.Len(t, vm.Diagnostics(), 1)
	require.Contains(t, vm.Diagnostics()[0].Message, "double free")
}

// Scenario: constructing a slice whose begin and end addresses fall in
// different objects (here, stack vs. heap) is rejected.
func TestCrossSegmentSliceConstructionIsRejected(t *testing.T) {
	vm := newTestVM()
	i32 := vm.Registry.InternBuiltin(BuiltinI32)

	fn := &Function{
		Name:    "cross_segment_slice",
		Allocas: []Alloca{{Type: i32, AlwaysInitialized: true}},
		MemoryAccessCheckInfos: []MemoryAccessCheckInfo{
			{ElemType: i32},
		},
		SliceConstructionCheckInfos: []SliceConstructionCheckInfo{
			{ElemType: i32},
		},
		Instructions: []Instruction{
			func() Instruction {
				i := NewInstruction(OpMalloc)
				i.Imm = 1
				i.SideTable = 0
				return i
			}(),
			func() Instruction {
				i := NewInstruction(OpSliceConstructionCheck)
				i.Operands[0] = 0 // the stack alloca's address
				i.Operands[1] = 1 // the heap allocation's address
				i.SideTable = 0
				return i
			}(),
			returnOrVoid(),
		},
	}

	_, returned := vm.Run(fn, nil)
	require.False(t, returned)
	require.True(t, vm.HasError())
}

// Scenario: a direct call passes an argument through the callee's
// parameter alloca and the return value flows back into the caller's
// result slot.
func TestDirectCallRoundTrip(t *testing.T) {
	vm := newTestVM()
	i32 := vm.Registry.InternBuiltin(BuiltinI32)

	callee := &Function{
		Name:       "add_one",
		ReturnType: i32,
		ParamTypes: []*Type{i32},
		Allocas:    []Alloca{{Type: i32}},
		MemoryAccessCheckInfos: []MemoryAccessCheckInfo{
			{ElemType: i32},
		},
		Instructions: []Instruction{
			func() Instruction {
				i := NewInstruction(OpLoadI32LE)
				i.Operands[0] = 0
				i.SideTable = 0
				return i
			}(),
			constI32Instr(1),
			func() Instruction {
				i := NewInstruction(OpAddI32)
				i.Operands[0] = 1
				i.Operands[1] = 2
				return i
			}(),
			returnInstr(3),
		},
	}

	caller := &Function{
		Name:       "caller",
		ReturnType: i32,
		Callees:    []*Function{callee},
		CallArgs:   [][]int32{{0}},
		Instructions: []Instruction{
			constI32Instr(41),
			func() Instruction {
				i := NewInstruction(OpCallDirect)
				i.SideTable = 0
				return i
			}(),
			returnInstr(1),
		},
	}

	result, returned := vm.Run(caller, nil)
	require.True(t, returned)
	require.False(t, vm.HasError())
	require.EqualValues(t, 42, uint32(result))
}

// Scenario: adding one element past an array's end and then subtracting
// one back lands on the last real element, round-tripping through the
// one-past-the-end classification.
func TestPointerArithmeticOnePastRoundTrip(t *testing.T) {
	vm := newTestVM()
	i32 := vm.Registry.InternBuiltin(BuiltinI32)
	arrT := vm.Registry.InternArray(i32, 4)

	fn := &Function{
		Name:    "ptr_round_trip",
		Allocas: []Alloca{{Type: arrT, AlwaysInitialized: true}},
		PointerArithmeticCheckInfos: []PointerArithmeticCheckInfo{
			{ElemType: i32},
		},
		MemoryAccessCheckInfos: []MemoryAccessCheckInfo{
			{ElemType: i32},
		},
		Instructions: []Instruction{
			func() Instruction {
				i := NewInstruction(OpPtrAdd)
				i.Operands[0] = 0
				i.Imm = 4
				i.SideTable = 0
				return i
			}(),
			func() Instruction {
				i := NewInstruction(OpPtrAdd)
				i.Operands[0] = 1
				i.Imm = uint64(int64(-1))
				i.SideTable = 0
				return i
			}(),
			func() Instruction {
				i := NewInstruction(OpLoadI32LE)
				i.Operands[0] = 2
				i.SideTable = 0
				return i
			}(),
			returnInstr(3),
		},
	}

	_, returned := vm.Run(fn, nil)
	require.True(t, returned)
	require.False(t, vm.HasError())
}

// Scenario: a heap allocation that is never freed is reported as a leak
// warning at teardown, without being treated as a failed evaluation.
func TestTeardownReportsUnfreedHeapAllocationAsLeak(t *testing.T) {
	vm := newTestVM()
	i32 := vm.Registry.InternBuiltin(BuiltinI32)

	fn := &Function{
		Name: "leaky",
		MemoryAccessCheckInfos: []MemoryAccessCheckInfo{
			{ElemType: i32},
		},
		Instructions: []Instruction{
			func() Instruction {
				i := NewInstruction(OpMalloc)
				i.Imm = 1
				i.SideTable = 0
				return i
			}(),
			returnOrVoid(),
		},
	}

	_, returned := vm.Run(fn, nil)
	require.False(t, returned)
	require.False(t, vm.HasError())
	require.Empty(t, vm.Diagnostics())

	vm.Teardown()
	require.False(t, vm.HasError())
	require.Len(t, vm.Diagnostics(), 1)
	require.Equal(t, SeverityWarning, vm.Diagnostics()[0].Severity)
	require.Contains(t, vm.Diagnostics()[0].Message, "never freed")
}

// Scenario: disabling ReportLeaks makes Teardown a no-op even with a live
// heap allocation outstanding.
func TestTeardownSkipsLeakReportWhenDisabled(t *testing.T) {
	options := DefaultOptions()
	options.ReportLeaks = false
	vm := NewVM(options, 0)
	i32 := vm.Registry.InternBuiltin(BuiltinI32)

	fn := &Function{
		Name: "leaky",
		MemoryAccessCheckInfos: []MemoryAccessCheckInfo{
			{ElemType: i32},
		},
		Instructions: []Instruction{
			func() Instruction {
				i := NewInstruction(OpMalloc)
				i.Imm = 1
				i.SideTable = 0
				return i
			}(),
			returnOrVoid(),
		},
	}

	_, _ = vm.Run(fn, nil)
	vm.Teardown()
	require.Empty(t, vm.Diagnostics())
}

func TestStepBudgetCancelsLongRunningLoops(t *testing.T) {
	options := DefaultOptions()
	options.StepBudget = 3
	vm := NewVM(options, 0)

	jump := NewInstruction(OpJump)
	jump.Operands[0] = 0

	fn := &Function{Name: "infinite_loop", Instructions: []Instruction{jump}}
	_, returned := vm.Run(fn, nil)
	require.False(t, returned)
	require.True(t, vm.HasError())
}
