package comptime

import "fmt"

// CallStackNote is a single frame of a reconstructed call stack, captured
// for a Diagnostic's Notes. heapObject also declares fields of this type
// for allocation/free snapshots, but nothing fills them.
type CallStackNote struct {
	Signature string
	CallSite  SourceRange
}

// buildCallStackNotes walks frames from innermost to outermost, producing
// one "in call to '<signature>'" note per frame attributed to the saved
// call-site source-range of the *previous* (caller) frame, followed by a
// final root note, per spec.md §4.D.
//
// allocationNumber supplements spec.md's literal root-note wording
// (original_source/src/comptime/executor_context.cpp tags each top-level
// comptime expression with an allocation number for diagnostic grouping);
// when zero the root note matches spec.md §4.D exactly.
func buildCallStackNotes(frames []CallStackNote, allocationNumber uint64) []DiagnosticNote {
	notes := make([]DiagnosticNote, 0, len(frames)+1)
	for _, f := range frames {
		notes = append(notes, DiagnosticNote{
			Range:   f.CallSite,
			Message: fmt.Sprintf("in call to '%s'", f.Signature),
		})
	}

	if allocationNumber != 0 {
		notes = append(notes, DiagnosticNote{
			Message: fmt.Sprintf("while evaluating expression #%d at compile time", allocationNumber),
		})
	} else {
		notes = append(notes, DiagnosticNote{
			Message: "while evaluating expression at compile time",
		})
	}

	return notes
}
