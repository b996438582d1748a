package comptime

// PtrT is the 64-bit segmented address described in spec.md §3. It is
// deliberately a distinct named type (not a bare uint64) so that arithmetic
// on it only happens inside the Memory Manager, per spec.md §9.
type PtrT uint64

// Segment identifies which of the four disjoint address ranges a PtrT
// falls in: global < stack < heap < meta.
type Segment uint8

const (
	SegGlobal Segment = iota
	SegStack
	SegHeap
	SegMeta
)

func (s Segment) String() string {
	switch s {
	case SegGlobal:
		return "global"
	case SegStack:
		return "stack"
	case SegHeap:
		return "heap"
	case SegMeta:
		return "meta"
	default:
		return "?unknown-segment?"
	}
}

// GlobalSubregion further partitions the global segment, per spec.md §3.
type GlobalSubregion uint8

const (
	GlobalObjects GlobalSubregion = iota
	GlobalFunctionPointers
	GlobalOnePastTheEnd
)

// object is the unit of provenance shared by the three object variants
// (global/stack/heap), per spec.md §3. Modeled as a tagged interface
// instead of a dynamic-dispatch hierarchy: the method set is closed and
// exhaustive, per spec.md §9's design note on object polymorphism.
type object interface {
	base() PtrT
	declaredType() *Type
	backing() []byte
	// isLive reports whether the object can still be the target of a
	// dereference/slice check (stack objects that have ended their
	// lifetime, or freed heap objects, are not live).
	isLive() bool
}

// globalObject holds immutable bytes materialized from a constant value.
// Its address is stable for the VM's lifetime; it is never freed.
type globalObject struct {
	addr PtrT
	typ  *Type
	data []byte
}

func (o *globalObject) base() PtrT          { return o.addr }
func (o *globalObject) declaredType() *Type { return o.typ }
func (o *globalObject) backing() []byte     { return o.data }
func (o *globalObject) isLive() bool        { return true }

// stackFrame is the memory-manager-side notion of a call's local storage:
// an ordered collection of stack objects placed contiguously, plus a
// generation id unique across the VM's lifetime (spec.md §3). It is
// distinct from the executor's call frame.
type stackFrame struct {
	id      uint64
	begin   PtrT
	size    uint64
	objects []*stackObject
}

// stackObject is bytes owned by a stack frame. initialized toggles with
// lifetime-start/lifetime-end instructions.
type stackObject struct {
	addr        PtrT
	typ         *Type
	data        []byte
	initialized bool
	frame       *stackFrame
}

func (o *stackObject) base() PtrT          { return o.addr }
func (o *stackObject) declaredType() *Type { return o.typ }
func (o *stackObject) backing() []byte     { return o.data }
func (o *stackObject) isLive() bool        { return o.initialized && o.frame != nil }

// heapObject is an array of count elements of elemType. typ is the
// materialized array<elemType, count> Type (interned on the shared
// TypeRegistry) that subobject-containment recursion walks to validate a
// dereference/pointer-arithmetic target anywhere past the first element;
// elemType is kept alongside it since callers address heap objects in
// terms of their element type, not the array as a whole. initBits records,
// at byte granularity, which bytes are currently initialized. allocNote
// and freeNote have room for call-stack snapshots of the allocation and
// the free; Malloc and Free do not fill them, so they stay empty and no
// diagnostic reads them.
type heapObject struct {
	addr      PtrT
	typ       *Type
	elemType  *Type
	count     uint64
	data      []byte
	initBits  *bitVector
	freed     bool
	allocNote []CallStackNote
	freeNote  []CallStackNote
}

func (o *heapObject) base() PtrT          { return o.addr }
func (o *heapObject) declaredType() *Type { return o.typ }
func (o *heapObject) backing() []byte     { return o.data }
func (o *heapObject) isLive() bool        { return !o.freed }

func (o *heapObject) totalSize() uint64 {
	return o.count * uint64(o.elemType.Size())
}

// metaKind distinguishes the two things a meta handle can indirect to, per
// spec.md §3's Pointer definition.
type metaKind uint8

const (
	metaOnePastTheEnd metaKind = iota
	metaStackObject
)

// metaRecord is the payload a meta PtrT indirects to: either a
// one-past-the-end address paired with the real object it belongs to, or a
// stack-object pointer paired with the stack-frame depth+id that produced
// it (so staleness can be detected after the frame pops).
type metaRecord struct {
	kind metaKind

	// valid when kind == metaOnePastTheEnd
	endAddr PtrT
	obj     object

	// valid when kind == metaStackObject
	realAddr PtrT
	frameID  uint64
	stackObj *stackObject
}
