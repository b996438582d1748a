package comptime

import (
	"fmt"
	"sync"
)

// TypeKind is the closed sum of Type cases described in spec.md §3.
type TypeKind uint8

const (
	KindBuiltin TypeKind = iota
	KindPointer
	KindAggregate
	KindArray
)

// BuiltinKind enumerates the scalar widths a builtin Type can take.
type BuiltinKind uint8

const (
	BuiltinI1 BuiltinKind = iota
	BuiltinI8
	BuiltinI16
	BuiltinI32
	BuiltinI64
	BuiltinF32
	BuiltinF64
)

var builtinSizes = map[BuiltinKind]uint32{
	BuiltinI1:  1,
	BuiltinI8:  1,
	BuiltinI16: 2,
	BuiltinI32: 4,
	BuiltinI64: 8,
	BuiltinF32: 4,
	BuiltinF64: 8,
}

// Type is an immutable, uniquely interned structural description of a
// value's size, alignment and layout. Two structurally equal Types always
// share identity — compare with ==.
type Type struct {
	kind TypeKind

	builtin BuiltinKind

	// aggregate / array payload
	members []*Type
	offsets []uint32
	elem    *Type
	count   uint32

	size  uint32
	align uint32
}

func (t *Type) Kind() TypeKind   { return t.kind }
func (t *Type) Size() uint32     { return t.size }
func (t *Type) Align() uint32    { return t.align }
func (t *Type) Builtin() BuiltinKind {
	return t.builtin
}
func (t *Type) Members() []*Type { return t.members }
func (t *Type) Offsets() []uint32 { return t.offsets }
func (t *Type) ElemType() *Type  { return t.elem }
func (t *Type) ArrayCount() uint32 { return t.count }

func (t *Type) String() string {
	switch t.kind {
	case KindBuiltin:
		return [...]string{"i1", "i8", "i16", "i32", "i64", "f32", "f64"}[t.builtin]
	case KindPointer:
		return "ptr"
	case KindAggregate:
		return fmt.Sprintf("aggregate(%d members)", len(t.members))
	case KindArray:
		return fmt.Sprintf("array<%s, %d>", t.elem, t.count)
	default:
		return "?unknown-type?"
	}
}

// TypeRegistry interns every Type constructed during bytecode generation.
// It is safe for concurrent use by multiple independently-running VMs, per
// spec.md §5 ("nothing is shared except the immutable Type Registry").
type TypeRegistry struct {
	mu sync.RWMutex

	pointerWidth uint32 // 4 or 8 bytes

	builtins map[BuiltinKind]*Type
	pointer  *Type

	aggregates map[string]*Type
	arrays     map[string]*Type
}

// NewTypeRegistry creates a registry configured for the given pointer
// width in bytes (4 for a 32-bit target, 8 for 64-bit).
func NewTypeRegistry(pointerWidthBytes uint32) *TypeRegistry {
	return &TypeRegistry{
		pointerWidth: pointerWidthBytes,
		builtins:     make(map[BuiltinKind]*Type, 7),
		aggregates:   make(map[string]*Type),
		arrays:       make(map[string]*Type),
	}
}

// InternBuiltin returns the unique Type for the given builtin kind.
func (r *TypeRegistry) InternBuiltin(kind BuiltinKind) *Type {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.builtins[kind]; ok {
		return t
	}

	size := builtinSizes[kind]
	t := &Type{kind: KindBuiltin, builtin: kind, size: size, align: size}
	r.builtins[kind] = t
	return t
}

// InternPointer returns the unique pointer Type for this registry's
// configured pointer width.
func (r *TypeRegistry) InternPointer() *Type {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pointer != nil {
		return r.pointer
	}

	r.pointer = &Type{kind: KindPointer, size: r.pointerWidth, align: r.pointerWidth}
	return r.pointer
}

// InternArray returns the unique Type for an array of count elements of
// elem. size = elem.Size() * count, per spec.md §3.
func (r *TypeRegistry) InternArray(elem *Type, count uint32) *Type {
	key := fmt.Sprintf("[%p;%d]", elem, count)

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.arrays[key]; ok {
		return t
	}

	t := &Type{
		kind:  KindArray,
		elem:  elem,
		count: count,
		size:  elem.size * count,
		align: elem.align,
	}
	r.arrays[key] = t
	return t
}

// InternAggregate returns the unique Type for an ordered sequence of
// member Types. Offsets are computed by placing each member at the
// smallest address >= the running end that is a multiple of its align, per
// spec.md §3/§4.A.
func (r *TypeRegistry) InternAggregate(members []*Type) *Type {
	key := aggregateKey(members)

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.aggregates[key]; ok {
		return t
	}

	offsets := make([]uint32, len(members))
	var end uint32
	var maxAlign uint32 = 1
	for i, m := range members {
		off := alignUp(end, m.align)
		offsets[i] = off
		end = off + m.size
		if m.align > maxAlign {
			maxAlign = m.align
		}
	}

	size := alignUp(end, maxAlign)

	t := &Type{
		kind:    KindAggregate,
		members: append([]*Type(nil), members...),
		offsets: offsets,
		size:    size,
		align:   maxAlign,
	}
	r.aggregates[key] = t
	return t
}

func alignUp(v, align uint32) uint32 {
	if align <= 1 {
		return v
	}
	rem := v % align
	if rem == 0 {
		return v
	}
	return v + (align - rem)
}

func aggregateKey(members []*Type) string {
	b := make([]byte, 0, len(members)*9)
	for _, m := range members {
		b = fmt.Appendf(b, "%p;", m)
	}
	return string(b)
}

// memberAtOffset locates the member whose offset range covers the given
// offset into t (t must be an aggregate), via binary search on offsets —
// part of the subobject-containment rule in spec.md §4.B.
func (t *Type) memberAtOffset(offset uint32) (member *Type, memberOffset uint32, ok bool) {
	lo, hi := 0, len(t.offsets)-1
	idx := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if t.offsets[mid] <= offset {
			idx = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if idx < 0 {
		return nil, 0, false
	}
	return t.members[idx], t.offsets[idx], true
}
