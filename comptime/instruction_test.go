package comptime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewInstructionDefaultsOperandsToUnused(t *testing.T) {
	i := NewInstruction(OpAddI32)
	require.Equal(t, [3]int32{-1, -1, -1}, i.Operands)
	require.EqualValues(t, -1, i.SideTable)
}

func TestOpcodeStringFallsBackForUnknownValues(t *testing.T) {
	require.Equal(t, "add.i32", OpAddI32.String())
	require.Equal(t, "?unknown-opcode?", Opcode(opcodeCount+100).String())
}

func TestIsTerminatorClassifiesControlFlowOnly(t *testing.T) {
	require.True(t, OpReturn.IsTerminator())
	require.True(t, OpJump.IsTerminator())
	require.True(t, OpUnreachable.IsTerminator())
	require.False(t, OpAddI32.IsTerminator())
	require.False(t, OpCallDirect.IsTerminator())
}

func TestFunctionNumValueSlots(t *testing.T) {
	fn := &Function{
		Allocas:      []Alloca{{}, {}},
		Instructions: []Instruction{NewInstruction(OpNop), NewInstruction(OpReturnVoid)},
	}
	require.Equal(t, 4, fn.NumValueSlots())
}
