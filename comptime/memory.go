package comptime

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// CompareResult is the outcome of ComparePointers, per spec.md §4.B(3).
type CompareResult uint8

const (
	CmpEqual CompareResult = iota
	CmpLess
	CmpGreater
	CmpUnrelated
)

// ArithStatus classifies the result of DoPointerArithmetic, per
// spec.md §4.B(4).
type ArithStatus uint8

const (
	ArithGood ArithStatus = iota
	ArithOnePastTheEnd
	ArithFail
)

// FreeStatus is the outcome of Free, per spec.md §4.E ("Allocation/free").
type FreeStatus uint8

const (
	FreeGood FreeStatus = iota
	FreeDoubleFree
	FreeInsideObject
	FreeUnknownAddress
)

// MemoryManager is the semantic heart of the VM (spec.md §4.B). It holds
// four sub-managers (global, stack, heap, meta) and dispatches every
// operation by the segment of its input address(es).
type MemoryManager struct {
	layout     layout
	registry   *TypeRegistry
	endianness Endianness
	logger     *zap.SugaredLogger

	globalObjects     []*globalObject
	nextGlobalObjAddr PtrT

	funcPtrs         map[PtrT]*Function
	nextFuncPtrAddr  PtrT

	globalOnePast       map[PtrT]*metaRecord
	nextGlobalOnePast   PtrT

	stackFrames []*stackFrame
	nextStackAddr PtrT
	nextFrameID   uint64

	heapObjects  map[PtrT]*heapObject
	nextHeapAddr PtrT

	metaRecords map[PtrT]*metaRecord
	nextMetaAddr PtrT
}

// NewMemoryManager constructs a manager with the given options over the
// given (shared, read-only) Type registry.
func NewMemoryManager(o Options, registry *TypeRegistry) *MemoryManager {
	l := newLayout(o)
	return &MemoryManager{
		layout:            l,
		registry:          registry,
		endianness:        o.Endianness,
		logger:            o.logger(),
		funcPtrs:          make(map[PtrT]*Function),
		nextFuncPtrAddr:   l.globalFuncPtrsBegin,
		globalOnePast:     make(map[PtrT]*metaRecord),
		nextGlobalOnePast: l.globalOnePastBegin,
		nextGlobalObjAddr: l.globalObjectsBegin,
		nextStackAddr:     l.stackBegin,
		heapObjects:       make(map[PtrT]*heapObject),
		nextHeapAddr:      l.heapBegin,
		metaRecords:       make(map[PtrT]*metaRecord),
		nextMetaAddr:      l.metaBegin,
	}
}

// AddGlobalObject materializes data as a global object of type typ at a
// fresh global address, never to be freed, per spec.md §3.
func (m *MemoryManager) AddGlobalObject(typ *Type, data []byte) PtrT {
	addr := m.nextGlobalObjAddr
	m.nextGlobalObjAddr += PtrT(max32(typ.Size(), 1))
	obj := &globalObject{addr: addr, typ: typ, data: data}
	m.globalObjects = append(m.globalObjects, obj)
	return addr
}

// AddFunctionPointer assigns a stable global-segment address to fn so it
// can be stored inside pointer-typed slots and later resolved by
// ResolveFunctionPointer for indirect calls.
func (m *MemoryManager) AddFunctionPointer(fn *Function) PtrT {
	addr := m.nextFuncPtrAddr
	m.nextFuncPtrAddr++
	m.funcPtrs[addr] = fn
	return addr
}

func (m *MemoryManager) ResolveFunctionPointer(p PtrT) (*Function, bool) {
	fn, ok := m.funcPtrs[p]
	return fn, ok
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// PushStackFrame creates a new, strictly-nested memory stack frame holding
// one uninitialized stack object per alloca type, per spec.md §3.
func (m *MemoryManager) PushStackFrame(allocaTypes []*Type) *stackFrame {
	m.nextFrameID++
	frame := &stackFrame{id: m.nextFrameID, begin: m.nextStackAddr}

	for _, t := range allocaTypes {
		addr := m.nextStackAddr
		sz := max32(t.Size(), 1)
		m.nextStackAddr += PtrT(sz)
		obj := &stackObject{addr: addr, typ: t, data: make([]byte, t.Size()), frame: frame}
		frame.objects = append(frame.objects, obj)
	}

	frame.size = uint64(m.nextStackAddr - frame.begin)
	m.stackFrames = append(m.stackFrames, frame)
	return frame
}

// PopStackFrame destroys the most recently pushed frame. Stack frames live
// strictly nested, destroyed in reverse order (spec.md §3).
func (m *MemoryManager) PopStackFrame() {
	n := len(m.stackFrames)
	if n == 0 {
		return
	}
	frame := m.stackFrames[n-1]
	m.stackFrames = m.stackFrames[:n-1]
	m.nextStackAddr = frame.begin
	for _, obj := range frame.objects {
		obj.frame = nil
	}
}

func (m *MemoryManager) currentFrame() *stackFrame {
	if len(m.stackFrames) == 0 {
		return nil
	}
	return m.stackFrames[len(m.stackFrames)-1]
}

// LifetimeStart/LifetimeEnd toggle a stack object's initialized flag, per
// the start-lifetime/end-lifetime opcodes of spec.md §4.C.
func (m *MemoryManager) LifetimeStart(obj *stackObject) { obj.initialized = true }
func (m *MemoryManager) LifetimeEnd(obj *stackObject)   { obj.initialized = false }

// Malloc allocates count contiguous elements of elemType on the heap. It
// fails (returns ok=false) when the configured heap segment is exhausted —
// the implementation-defined size cap spec.md §4.E refers to.
func (m *MemoryManager) Malloc(elemType *Type, count uint64) (PtrT, bool) {
	total := uint64(elemType.Size()) * count
	if total == 0 {
		total = 1
	}
	addr := m.nextHeapAddr
	if uint64(addr)+total > uint64(m.layout.metaBegin) {
		return 0, false
	}
	m.nextHeapAddr += PtrT(total)

	obj := &heapObject{
		addr:     addr,
		typ:      m.registry.InternArray(elemType, uint32(count)),
		elemType: elemType,
		count:    count,
		data:     make([]byte, total),
		initBits: newBitVector(total),
	}
	m.heapObjects[addr] = obj
	return addr, true
}

// Free reports Good, DoubleFree (already marked freed), InsideObject
// (pointer not at object base) or UnknownAddress, per spec.md §4.E.
func (m *MemoryManager) Free(p PtrT) FreeStatus {
	realAddr, _, ok := m.resolveMeta(p)
	if !ok {
		realAddr = p
	}

	if obj, ok := m.heapObjects[realAddr]; ok {
		if obj.freed {
			return FreeDoubleFree
		}
		obj.freed = true
		return FreeGood
	}

	// Address landed inside a live heap object, but not at its base.
	for base, obj := range m.heapObjects {
		if realAddr > base && realAddr < base+PtrT(obj.totalSize()) {
			if obj.freed {
				return FreeDoubleFree
			}
			return FreeInsideObject
		}
	}

	return FreeUnknownAddress
}

// LiveHeapAllocations returns every heap allocation that has not been
// freed, ordered by address for deterministic reporting, for VM.Teardown's
// leak report (spec.md §5).
func (m *MemoryManager) LiveHeapAllocations() []*heapObject {
	var live []*heapObject
	for _, obj := range m.heapObjects {
		if !obj.freed {
			live = append(live, obj)
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].addr < live[j].addr })
	return live
}

// findObject locates the live object containing p and the byte offset of p
// within it, dispatching by segment per spec.md §4.B.
func (m *MemoryManager) findObject(p PtrT) (obj object, offset uint64, ok bool) {
	switch m.layout.segmentOf(p) {
	case SegGlobal:
		for _, g := range m.globalObjects {
			if p >= g.addr && p < g.addr+PtrT(max32(g.typ.Size(), 1)) {
				return g, uint64(p - g.addr), true
			}
		}
	case SegStack:
		for _, frame := range m.stackFrames {
			for _, so := range frame.objects {
				if p >= so.addr && p < so.addr+PtrT(max32(so.typ.Size(), 1)) {
					return so, uint64(p - so.addr), true
				}
			}
		}
	case SegHeap:
		for base, ho := range m.heapObjects {
			if p >= base && p < base+PtrT(ho.totalSize()) {
				return ho, uint64(p - base), true
			}
		}
	}
	return nil, 0, false
}

// resolveMeta transparently resolves a meta pointer to its underlying real
// address, validating that a referent stack frame is still live by
// comparing recorded depth+id against the live stack, per spec.md §4.B.
// ok is false for addresses that are not meta pointers at all (the caller
// should then treat p as already real).
func (m *MemoryManager) resolveMeta(p PtrT) (real PtrT, onePast bool, ok bool) {
	if m.layout.segmentOf(p) != SegMeta {
		if m.layout.globalSubregionOf(p) == GlobalOnePastTheEnd {
			if rec, exists := m.globalOnePast[p]; exists {
				return rec.endAddr, true, true
			}
		}
		return 0, false, false
	}

	rec, exists := m.metaRecords[p]
	if !exists {
		return 0, false, false
	}

	switch rec.kind {
	case metaOnePastTheEnd:
		return rec.endAddr, true, true
	case metaStackObject:
		frame := rec.stackObj.frame
		if frame == nil || frame.id != rec.frameID {
			// Referent frame has been popped: stale meta pointer.
			return 0, false, false
		}
		return rec.realAddr, false, true
	}
	return 0, false, false
}

// resolveMetaObj is resolveMeta plus the object a one-past-the-end record
// already carries, avoiding a second (boundary-address) object lookup.
func (m *MemoryManager) resolveMetaObj(p PtrT) (real PtrT, onePast bool, ok bool, obj object) {
	if m.layout.segmentOf(p) != SegMeta {
		if m.layout.globalSubregionOf(p) == GlobalOnePastTheEnd {
			if rec, exists := m.globalOnePast[p]; exists {
				return rec.endAddr, true, true, rec.obj
			}
		}
		return 0, false, false, nil
	}

	rec, exists := m.metaRecords[p]
	if !exists {
		return 0, false, false, nil
	}

	switch rec.kind {
	case metaOnePastTheEnd:
		return rec.endAddr, true, true, rec.obj
	case metaStackObject:
		frame := rec.stackObj.frame
		if frame == nil || frame.id != rec.frameID {
			return 0, false, false, nil
		}
		return rec.realAddr, false, true, rec.stackObj
	}
	return 0, false, false, nil
}

func (m *MemoryManager) makeOnePastMeta(realAddr PtrT, obj object) PtrT {
	// Global objects get a stable one-past handle in the global segment's
	// dedicated subregion since they live for the VM's whole lifetime;
	// everything else gets a meta-segment handle.
	if _, isGlobal := obj.(*globalObject); isGlobal {
		addr := m.nextGlobalOnePast
		m.nextGlobalOnePast++
		m.globalOnePast[addr] = &metaRecord{kind: metaOnePastTheEnd, endAddr: realAddr, obj: obj}
		return addr
	}

	addr := m.nextMetaAddr
	m.nextMetaAddr++
	m.metaRecords[addr] = &metaRecord{kind: metaOnePastTheEnd, endAddr: realAddr, obj: obj}
	return addr
}

// subobjectContains implements the recursive subobject-containment rule of
// spec.md §4.B(1): offset 0 with matching type is trivially contained;
// aggregates recurse into the covering member; arrays recurse into the
// covering element; builtins/pointers only contain the trivial case.
func subobjectContains(declaring *Type, offset uint64, want *Type) bool {
	if offset == 0 && declaring == want {
		return true
	}

	switch declaring.Kind() {
	case KindAggregate:
		if offset >= uint64(declaring.Size()) {
			return false
		}
		member, memberOff, ok := declaring.memberAtOffset(uint32(offset))
		if !ok {
			return false
		}
		return subobjectContains(member, offset-uint64(memberOff), want)
	case KindArray:
		elem := declaring.ElemType()
		elemSize := uint64(elem.Size())
		if elemSize == 0 || offset >= elemSize*uint64(declaring.ArrayCount()) {
			return false
		}
		return subobjectContains(elem, offset%elemSize, want)
	default:
		return false
	}
}

// CheckDereference reports whether p is a live address, [p, p+size(T))
// lies within a single object, that range is initialized (heap objects
// only), and T is a subobject type at the matching offset — spec.md
// §4.B(1).
func (m *MemoryManager) CheckDereference(p PtrT, t *Type) (bool, string) {
	realAddr, onePast, wasMeta := m.resolveMeta(p)
	if wasMeta {
		if onePast {
			return false, m.explainDereference(p, t, "address is a one-past-the-end handle; dereferencing it is never valid")
		}
		p = realAddr
	}

	obj, offset, ok := m.findObject(p)
	if !ok || !obj.isLive() {
		return false, m.explainDereference(p, t, "address does not refer to a live object")
	}

	size := uint64(t.Size())
	if offset+size > uint64(len(obj.backing())) {
		return false, m.explainDereference(p, t, "byte range extends past the end of the object")
	}

	if ho, isHeap := obj.(*heapObject); isHeap {
		if !ho.initBits.testRange(offset, offset+size) {
			return false, m.explainDereference(p, t, "byte range is not fully initialized")
		}
	}

	if !subobjectContains(obj.declaredType(), offset, t) {
		return false, m.explainDereference(p, t, fmt.Sprintf("no subobject of type %s exists at offset %d", t, offset))
	}

	return true, ""
}

func (m *MemoryManager) explainDereference(p PtrT, t *Type, reason string) string {
	m.logger.Debugw("dereference check failed", "address", uint64(p), "type", t.String(), "reason", reason)
	return fmt.Sprintf("invalid dereference of type %s at address 0x%x: %s", t, uint64(p), reason)
}

// CheckSliceConstruction reports whether [begin, end) is a valid slice of
// elem_T, per spec.md §4.B(2).
func (m *MemoryManager) CheckSliceConstruction(begin, end PtrT, elemT *Type) (bool, string) {
	if begin == end {
		return true, ""
	}

	beginReal, beginOnePast, beginWasMeta := m.resolveMeta(begin)
	endReal, endOnePast, endWasMeta := m.resolveMeta(end)
	if beginWasMeta {
		if beginOnePast {
			return false, "begin address is a one-past-the-end pointer, which cannot start a non-empty slice"
		}
		begin = beginReal
	}
	endIsOnePast := false
	if endWasMeta {
		endIsOnePast = endOnePast
		end = endReal
	}

	if end < begin {
		return false, "end address precedes begin address"
	}

	total := uint64(end - begin)
	elemSize := uint64(elemT.Size())
	if elemSize == 0 || total%elemSize != 0 {
		return false, fmt.Sprintf("byte range of size %d is not a multiple of element size %d", total, elemSize)
	}

	beginObj, beginOffset, ok := m.findObject(begin)
	if !ok || !beginObj.isLive() {
		return false, "begin address does not refer to a live object"
	}

	endObj, endOffset, endOk := m.findObject(end)
	sameObject := endOk && endObj == beginObj
	if !sameObject {
		if !(endIsOnePast && uint64(end-begin)+beginOffset == uint64(len(beginObj.backing()))) {
			return false, "begin address points to a subobject at offset " + fmt.Sprint(beginOffset) +
				"; end address is not within the same object"
		}
		endOffset = uint64(len(beginObj.backing()))
	}

	if ho, isHeap := beginObj.(*heapObject); isHeap {
		if !ho.initBits.testRange(beginOffset, endOffset) {
			return false, "slice byte range is not fully initialized"
		}
	}

	if !slicesFitsAsRun(beginObj.declaredType(), beginOffset, elemT, total, endIsOnePast && endOffset == uint64(len(beginObj.backing()))) {
		return false, fmt.Sprintf("byte range [%d, %d) is not a contiguous run of %s elements", beginOffset, endOffset, elemT)
	}

	return true, ""
}

// slicesFitsAsRun mirrors original_source's slice_contained_in_object: the
// run may abut the end of the object only when the end address is a
// one-past-the-end handle (spec.md §4.B(2)).
func slicesFitsAsRun(declaring *Type, offset uint64, elemT *Type, totalSize uint64, endsAtObjectEnd bool) bool {
	if declaring == elemT && offset == 0 {
		return endsAtObjectEnd || totalSize <= uint64(declaring.Size())
	}

	switch declaring.Kind() {
	case KindArray:
		elemSize := uint64(declaring.ElemType().Size())
		if elemSize == 0 {
			return false
		}
		if declaring.ElemType() == elemT {
			return offset%elemSize == 0
		}
		return slicesFitsAsRun(declaring.ElemType(), offset%elemSize, elemT, totalSize, endsAtObjectEnd)
	case KindAggregate:
		member, memberOff, ok := declaring.memberAtOffset(uint32(offset))
		if !ok {
			return false
		}
		return slicesFitsAsRun(member, offset-uint64(memberOff), elemT, totalSize, endsAtObjectEnd)
	default:
		return false
	}
}

// explainSliceConstruction resolves the spec.md §9 Open Question: it
// re-runs CheckSliceConstruction's own branches and, at the first failing
// check, returns the same message CheckSliceConstruction already computed
// — no new messages are invented, it simply exposes the reason outside the
// boolean result for callers that already know the check failed.
func (m *MemoryManager) explainSliceConstruction(begin, end PtrT, elemT *Type) string {
	_, reason := m.CheckSliceConstruction(begin, end, elemT)
	return reason
}

// ComparePointers is defined only when both pointers refer to the same
// underlying object after resolving meta handles, per spec.md §4.B(3).
func (m *MemoryManager) ComparePointers(lhs, rhs PtrT) CompareResult {
	lhsReal, _, lhsMeta := m.resolveMeta(lhs)
	rhsReal, _, rhsMeta := m.resolveMeta(rhs)
	if lhsMeta {
		lhs = lhsReal
	}
	if rhsMeta {
		rhs = rhsReal
	}

	if lhs == rhs {
		return CmpEqual
	}

	// Function pointers compare only by equality.
	if _, lhsIsFunc := m.funcPtrs[lhs]; lhsIsFunc {
		return CmpUnrelated
	}
	if _, rhsIsFunc := m.funcPtrs[rhs]; rhsIsFunc {
		return CmpUnrelated
	}

	lhsObj, _, lhsOk := m.findObject(lhs)
	rhsObj, _, rhsOk := m.findObject(rhs)
	if !lhsOk || !rhsOk || lhsObj != rhsObj {
		return CmpUnrelated
	}

	if lhs < rhs {
		return CmpLess
	}
	return CmpGreater
}

// DoPointerArithmetic computes base + offset*size(elem_T), classifying the
// result per spec.md §4.B(4).
func (m *MemoryManager) DoPointerArithmetic(base PtrT, offset int64, elemT *Type) (PtrT, ArithStatus) {
	if offset == -9223372036854775808 { // INT64_MIN: no negation possible
		return 0, ArithFail
	}

	_, wasOnePast, wasMeta, metaObj := m.resolveMetaObj(base)

	var obj object
	var baseOffset uint64
	var ok bool
	if wasMeta && wasOnePast {
		// The meta record already carries the object; findObject would
		// fail here since the boundary address is outside its range.
		obj, baseOffset, ok = metaObj, uint64(len(metaObj.backing())), true
	} else if wasMeta {
		obj, baseOffset, ok = m.findObject(metaObj.base())
	} else {
		obj, baseOffset, ok = m.findObject(base)
	}
	if !ok {
		return 0, ArithFail
	}

	delta := offset * int64(elemT.Size())
	resultOffset := int64(baseOffset) + delta
	if resultOffset < 0 || uint64(resultOffset) > uint64(len(obj.backing())) {
		return 0, ArithFail
	}

	resultAddr := obj.base() + PtrT(resultOffset)
	objSize := uint64(len(obj.backing()))

	if uint64(resultOffset) == objSize {
		// one-past-the-end of the whole object, or of a containing array
		// whose element type is elemT.
		if obj.declaredType() == elemT || containingArrayElemIs(obj.declaredType(), uint64(resultOffset), elemT) {
			return m.makeOnePastMeta(resultAddr, obj), ArithOnePastTheEnd
		}
	}

	if subobjectContains(obj.declaredType(), uint64(resultOffset), elemT) {
		return resultAddr, ArithGood
	}

	// Check for one-past-the-end of a containing array at this offset.
	if containingArrayElemIs(obj.declaredType(), uint64(resultOffset), elemT) {
		return resultAddr, ArithGood
	}

	return 0, ArithFail
}

// containingArrayElemIs reports whether offset lands exactly one element
// past the end of an array-typed subobject (at any nesting depth) whose
// element type is elemT.
func containingArrayElemIs(declaring *Type, offset uint64, elemT *Type) bool {
	switch declaring.Kind() {
	case KindArray:
		elemSize := uint64(declaring.ElemType().Size())
		if elemSize == 0 {
			return false
		}
		arrEnd := elemSize * uint64(declaring.ArrayCount())
		if offset == arrEnd && declaring.ElemType() == elemT {
			return true
		}
		if offset < arrEnd {
			return containingArrayElemIs(declaring.ElemType(), offset%elemSize, elemT)
		}
		return false
	case KindAggregate:
		member, memberOff, ok := declaring.memberAtOffset(uint32(offset))
		if !ok {
			return false
		}
		return containingArrayElemIs(member, offset-uint64(memberOff), elemT)
	default:
		return false
	}
}

// DoGEP is the unchecked form used for trusted, compiler-emitted
// field/element access, per spec.md §4.B(5). The generator must guarantee
// index validity; callers that violate it get an internal assertion
// failure, not a diagnostic.
func (m *MemoryManager) DoGEP(base PtrT, t *Type, index uint64) PtrT {
	switch t.Kind() {
	case KindArray:
		if index > uint64(t.ArrayCount()) {
			panicInternal("do_gep: index %d is out of range for %s", index, t)
		}
		elemSize := uint64(t.ElemType().Size())
		result := base + PtrT(index*elemSize)
		if index == uint64(t.ArrayCount()) {
			if obj, _, ok := m.findObject(base); ok {
				return m.makeOnePastMeta(result, obj)
			}
		}
		return result
	case KindAggregate:
		if index >= uint64(len(t.Offsets())) {
			panicInternal("do_gep: member index %d is out of range for %s", index, t)
		}
		return base + PtrT(t.Offsets()[index])
	default:
		panicInternal("do_gep: index into non-aggregate, non-array type %s", t)
		return 0
	}
}

// DoPointerDifference returns (lhs-rhs)/size(elem_T), per spec.md §4.B(6).
func (m *MemoryManager) DoPointerDifference(lhs, rhs PtrT, elemT *Type) (int64, bool) {
	_, lhsOnePast, lhsMeta, lhsMetaObj := m.resolveMetaObj(lhs)
	_, rhsOnePast, rhsMeta, rhsMetaObj := m.resolveMetaObj(rhs)

	resolve := func(p PtrT, wasMeta, wasOnePast bool, metaObj object) (object, uint64, bool) {
		if wasMeta && wasOnePast {
			return metaObj, uint64(len(metaObj.backing())), true
		}
		if wasMeta {
			return m.findObject(metaObj.base())
		}
		return m.findObject(p)
	}

	lhsObj, lhsOff, lhsOk := resolve(lhs, lhsMeta, lhsOnePast, lhsMetaObj)
	rhsObj, rhsOff, rhsOk := resolve(rhs, rhsMeta, rhsOnePast, rhsMetaObj)
	if !lhsOk || !rhsOk || lhsObj != rhsObj {
		return 0, false
	}

	elemSize := int64(elemT.Size())
	if elemSize == 0 {
		return 0, false
	}

	diff := int64(lhsOff) - int64(rhsOff)
	if diff%elemSize != 0 {
		return 0, false
	}

	if lhsOff != rhsOff {
		min, max := lhs, rhs
		if min > max {
			min, max = max, min
		}
		if ok, _ := m.CheckSliceConstruction(min, max, elemT); !ok {
			return 0, false
		}
	}

	return diff / elemSize, true
}

// CopyValues propagates both bytes and the initialized mask from src to
// dst, used by the copy_values/copy_overlapping_values/relocate_values
// instruction family of spec.md §4.C.
func (m *MemoryManager) CopyValues(dst, src PtrT, elemT *Type, count uint64) bool {
	n := uint64(elemT.Size()) * count
	dstObj, dstOff, dstOk := m.findObject(dst)
	srcObj, srcOff, srcOk := m.findObject(src)
	if !dstOk || !srcOk {
		return false
	}

	copy(dstObj.backing()[dstOff:dstOff+n], srcObj.backing()[srcOff:srcOff+n])

	dstHeap, dstIsHeap := dstObj.(*heapObject)
	if !dstIsHeap {
		return true
	}
	if srcHeap, srcIsHeap := srcObj.(*heapObject); srcIsHeap {
		relocateRange(dstHeap.data, dstHeap.initBits, dstOff, srcHeap.data, srcHeap.initBits, srcOff, n)
	} else {
		dstHeap.initBits.setRange(dstOff, dstOff+n, true)
	}
	return true
}

func panicInternal(format string, args ...any) {
	panic(newInternalError(fmt.Sprintf(format, args...)))
}
