package comptime

// layout records the contiguous address ranges assigned to each segment,
// and the further sub-partition of the global segment, per spec.md §3.
type layout struct {
	globalBegin PtrT
	stackBegin  PtrT
	heapBegin   PtrT
	metaBegin   PtrT
	metaEnd     PtrT

	// Sub-partition of [globalBegin, stackBegin): objects, function
	// pointers, one-past-the-end handles, each given an equal band.
	globalObjectsBegin   PtrT
	globalFuncPtrsBegin  PtrT
	globalOnePastBegin   PtrT
}

func newLayout(o Options) layout {
	const base PtrT = 0x1000 // keep the null pointer (0) out of every segment
	globalBegin := base
	stackBegin := globalBegin + PtrT(o.GlobalSegmentSize)
	heapBegin := stackBegin + PtrT(o.StackSegmentSize)
	metaBegin := heapBegin + PtrT(o.HeapSegmentSize)
	metaEnd := metaBegin + PtrT(o.MetaSegmentSize)

	band := PtrT(o.GlobalSegmentSize / 3)
	return layout{
		globalBegin:         globalBegin,
		stackBegin:          stackBegin,
		heapBegin:           heapBegin,
		metaBegin:           metaBegin,
		metaEnd:             metaEnd,
		globalObjectsBegin:  globalBegin,
		globalFuncPtrsBegin: globalBegin + band,
		globalOnePastBegin:  globalBegin + 2*band,
	}
}

// segmentOf classifies an address by segment, per spec.md §4.B's
// "Segment dispatch".
func (l layout) segmentOf(p PtrT) Segment {
	switch {
	case p >= l.metaBegin:
		return SegMeta
	case p >= l.heapBegin:
		return SegHeap
	case p >= l.stackBegin:
		return SegStack
	default:
		return SegGlobal
	}
}

func (l layout) globalSubregionOf(p PtrT) GlobalSubregion {
	switch {
	case p >= l.globalOnePastBegin:
		return GlobalOnePastTheEnd
	case p >= l.globalFuncPtrsBegin:
		return GlobalFunctionPointers
	default:
		return GlobalObjects
	}
}
