package comptime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildCallStackNotesOrdersInnermostFirst(t *testing.T) {
	frames := []CallStackNote{
		{Signature: "inner", CallSite: SourceRange{Line: 10}},
		{Signature: "outer", CallSite: SourceRange{Line: 3}},
	}
	notes := buildCallStackNotes(frames, 0)
	require.Len(t, notes, 3)
	require.Equal(t, "in call to 'inner'", notes[0].Message)
	require.Equal(t, "in call to 'outer'", notes[1].Message)
	require.Equal(t, "while evaluating expression at compile time", notes[2].Message)
}

func TestBuildCallStackNotesIncludesAllocationNumber(t *testing.T) {
	notes := buildCallStackNotes(nil, 7)
	require.Len(t, notes, 1)
	require.Equal(t, "while evaluating expression #7 at compile time", notes[0].Message)
}

func TestInternalErrorWrapsPkgErrorsStackTrace(t *testing.T) {
	err := newInternalError("unknown opcode")
	require.EqualError(t, err, "unknown opcode")
	require.NotNil(t, err.StackTrace())
}

func TestSeverityString(t *testing.T) {
	require.Equal(t, "error", SeverityError.String())
	require.Equal(t, "warning", SeverityWarning.String())
}
