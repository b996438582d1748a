package comptime

// Alloca is a stack slot declared at function entry: a Type plus a flag
// recording whether it is always-initialized (no matching lifetime-start
// is required before first use), per spec.md §3.
type Alloca struct {
	Type              *Type
	AlwaysInitialized bool
}

// SwitchInfo is a jump table for a multi-way integer branch, addressed by
// SideTable index from a switch instruction, per spec.md §3.
type SwitchInfo struct {
	Values  []int64
	Targets []int32 // instruction indices
	Default int32
}

// SwitchStrInfo is the string-keyed analogue of SwitchInfo.
type SwitchStrInfo struct {
	Values  []string
	Targets []int32
	Default int32
}

// SliceConstructionCheckInfo parameterizes a slice_construction_check
// instruction: which operand slots hold begin/end, and the element Type
// those addresses are checked against.
type SliceConstructionCheckInfo struct {
	ElemType *Type
}

// PointerArithmeticCheckInfo parameterizes a pointer-arithmetic overflow
// check: the element Type the offset is scaled by.
type PointerArithmeticCheckInfo struct {
	ElemType *Type
}

// MemoryAccessCheckInfo parameterizes a memory-touching instruction.
// ElemType means different things depending on which instruction addresses
// it: for array_bounds_check/load/store it is the scalar type being
// accessed; for a gep instruction it is the container (array or aggregate)
// type being indexed. Count is the declared element count used by the
// array-bounds check; Signed/Width describe the index's representation.
type MemoryAccessCheckInfo struct {
	ElemType *Type
	Count    uint32
	Signed   bool
	Width    int // 32 or 64
}

// CopyValuesInfo parameterizes the copy_values/copy_overlapping_values/
// relocate_values instruction family: element type and count, and whether
// the copy may overlap (forcing a memmove-style direction choice).
type CopyValuesInfo struct {
	ElemType    *Type
	Count       uint64
	MayOverlap  bool
	IsRelocate  bool
}

// AddGlobalArrayDataInfo parameterizes the bytecode-generation-time
// instruction that materializes a constant array's bytes as a global
// object, per spec.md §3's side-table list.
type AddGlobalArrayDataInfo struct {
	ElemType *Type
	Data     []byte
}

// Function is immutable after generation. Every index embedded in an
// Instruction is closed under this Function — cross-function references
// use *Function pointers directly (spec.md §3/§6).
type Function struct {
	Name       string
	ReturnType *Type // nil for a void-returning function
	ParamTypes []*Type

	Allocas      []Alloca
	Instructions []Instruction

	SrcTokens                   []SourceRange
	Errors                      []string
	Callees                     []*Function
	CallArgs                    [][]int32
	SwitchInfos                 []SwitchInfo
	SwitchStrInfos              []SwitchStrInfo
	SliceConstructionCheckInfos []SliceConstructionCheckInfo
	PointerArithmeticCheckInfos []PointerArithmeticCheckInfo
	MemoryAccessCheckInfos      []MemoryAccessCheckInfo
	CopyValuesInfos             []CopyValuesInfo
	AddGlobalArrayDataInfos     []AddGlobalArrayDataInfo
}

// NumValueSlots is alloca_count + instruction count, the size of the
// per-frame operand-value array described in spec.md §4.E.
func (f *Function) NumValueSlots() int {
	return len(f.Allocas) + len(f.Instructions)
}

// Signature renders the string used in "in call to '<signature>'"
// diagnostic notes, per spec.md §4.D.
func (f *Function) Signature() string {
	return f.Name
}

// allocaTypes extracts the Type of each entry frame slot, in declaration
// order, for MemoryManager.PushStackFrame.
func (f *Function) allocaTypes() []*Type {
	types := make([]*Type, len(f.Allocas))
	for i, a := range f.Allocas {
		types[i] = a.Type
	}
	return types
}
