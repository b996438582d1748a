package comptime

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"go.uber.org/zap"
)

// frame is the executor-side call frame: the function being run, its
// program counter, and its dense operand-value slot array (spec.md §4.E).
// It is distinct from the memory manager's stackFrame, which owns the
// actual bytes; frame just tracks where execution is and what each slot's
// current value is.
//
// Slots [0, len(fn.Allocas)) hold the addresses of this call's stack
// objects. By convention the bytecode generator places each parameter in
// one of the first len(fn.ParamTypes) allocas, so VM.pushFrame seeds those
// objects' bytes (not their slot entries) with the caller-supplied argument
// values before execution starts — every local, parameter or not, is
// reached by loading through its address, keeping one addressing model for
// the whole function instead of a separate "argument" channel.
// Slots [len(fn.Allocas), NumValueSlots()) hold the result of the
// instruction at that same offset, written at most once.
type frame struct {
	fn       *Function
	pc       int
	values   []uint64
	memFrame *stackFrame

	// callSite/resultSlot describe how this frame was entered: where in
	// the caller the call instruction lived, and which of the caller's
	// slots receives this frame's return value (-1 for the outermost
	// frame started by VM.Run).
	callSite   SourceRange
	resultSlot int
}

// VM is the sequential executor of spec.md §4.E: one dispatch loop over a
// nested stack of frames, a step budget, and a diagnostic sink. Unlike the
// Type Registry, a VM is never shared between goroutines (spec.md §5).
type VM struct {
	Options  Options
	Registry *TypeRegistry
	Memory   *MemoryManager
	logger   *zap.SugaredLogger

	frames []*frame

	diagnostics []Diagnostic
	hasError    bool

	allocationNumber uint64
	stepsExecuted    uint64

	lastReturn uint64
	returned   bool
}

// NewVM constructs a VM with its own Type Registry and Memory Manager.
// allocationNumber supplements the trailing root diagnostic note, per
// spec.md §4.D / original_source/src/comptime/executor_context.cpp.
func NewVM(o Options, allocationNumber uint64) *VM {
	registry := NewTypeRegistry(o.PointerWidth)
	return &VM{
		Options:          o,
		Registry:         registry,
		Memory:           NewMemoryManager(o, registry),
		logger:           o.logger(),
		allocationNumber: allocationNumber,
	}
}

// Diagnostics returns every diagnostic accumulated so far, in emission
// order.
func (vm *VM) Diagnostics() []Diagnostic { return vm.diagnostics }

// HasError reports the sticky error flag of spec.md §4.E: once any
// diagnostic-error-class check fails, it stays set for the rest of the
// run even though execution itself continues.
func (vm *VM) HasError() bool { return vm.hasError }

// Teardown finalizes the VM after its last Run, reporting any heap
// allocation that was never freed as a leak warning (spec.md §5, "if the
// driver enabled that check"). A no-op when Options.ReportLeaks is false.
// Leaks never set HasError: spec.md §5 is explicit that they are reported,
// not treated as a failed compile-time evaluation.
func (vm *VM) Teardown() {
	if !vm.Options.ReportLeaks {
		return
	}
	for _, leak := range vm.Memory.LiveHeapAllocations() {
		vm.diagnostics = append(vm.diagnostics, Diagnostic{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("heap allocation of %d byte(s) at address 0x%x was never freed", leak.totalSize(), uint64(leak.addr)),
		})
	}
}

// Run executes fn to completion (or until a step-budget cancellation or
// an internal assertion failure), starting a fresh top-level call. It
// recovers internal assertion failures as a false "ok" plus a final
// internal-error diagnostic, rather than letting the generator bug crash
// the calling goroutine, mirroring the teacher's
// getDefaultRecoverFuncForVM pattern.
func (vm *VM) Run(fn *Function, args []uint64) (result uint64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ie, isInternal := r.(*internalError)
			if !isInternal {
				panic(r)
			}
			vm.hasError = true
			vm.diagnostics = append(vm.diagnostics, Diagnostic{
				Severity: SeverityError,
				Message:  "internal error: " + ie.Error(),
			})
			vm.logger.Errorw("comptime executor aborted", "error", ie.Error())
			result, ok = 0, false
		}
	}()

	vm.pushFrame(fn, args, -1, SourceRange{})

	for len(vm.frames) > 0 {
		if vm.Options.StepBudget != 0 && vm.stepsExecuted >= vm.Options.StepBudget {
			vm.emitDiagnostic(SourceRange{}, "step budget of %d instructions exceeded", vm.Options.StepBudget)
			break
		}
		vm.step()
		vm.stepsExecuted++
	}

	return vm.lastReturn, vm.returned
}

func (vm *VM) top() *frame { return vm.frames[len(vm.frames)-1] }

// pushFrame installs fn as the new top frame, allocating its stack objects
// and seeding parameter bytes, per spec.md §3/§4.E.
func (vm *VM) pushFrame(fn *Function, args []uint64, resultSlot int, callSite SourceRange) {
	memFrame := vm.Memory.PushStackFrame(fn.allocaTypes())
	values := make([]uint64, fn.NumValueSlots())

	for i, obj := range memFrame.objects {
		values[i] = uint64(obj.addr)
		switch {
		case i < len(args):
			writeRawValue(obj.data, obj.typ, args[i], vm.Options.Endianness)
			vm.Memory.LifetimeStart(obj)
		case fn.Allocas[i].AlwaysInitialized:
			vm.Memory.LifetimeStart(obj)
		}
	}

	vm.frames = append(vm.frames, &frame{
		fn:         fn,
		values:     values,
		memFrame:   memFrame,
		callSite:   callSite,
		resultSlot: resultSlot,
	})
}

// popFrame tears down the current frame and, unless it was the outermost
// one, resumes the caller: the caller's result slot (if any) receives
// retVal and its pc advances past the call instruction.
func (vm *VM) popFrame(retVal uint64, hasReturn bool) {
	top := vm.top()
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.Memory.PopStackFrame()

	if len(vm.frames) == 0 {
		vm.lastReturn = retVal
		vm.returned = hasReturn
		return
	}

	caller := vm.top()
	if top.resultSlot >= 0 && hasReturn {
		caller.values[top.resultSlot] = retVal
	}
	caller.pc++
}

// callStackNotes captures every still-live frame except the outermost
// (entered by VM.Run with no call site; the root note stands for it),
// innermost-first, for buildCallStackNotes. Each note carries the frame's
// own call site in its caller.
func (vm *VM) callStackNotes() []CallStackNote {
	notes := make([]CallStackNote, 0, len(vm.frames)-1)
	for i := len(vm.frames) - 1; i >= 1; i-- {
		notes = append(notes, CallStackNote{Signature: vm.frames[i].fn.Signature(), CallSite: vm.frames[i].callSite})
	}
	return notes
}

// emitDiagnostic is the low-level diagnostic sink shared by every runtime
// check: it sets the sticky HasError flag and attaches a reconstructed
// call stack, per spec.md §4.D.
func (vm *VM) emitDiagnostic(primary SourceRange, format string, args ...any) {
	vm.hasError = true
	vm.diagnostics = append(vm.diagnostics, Diagnostic{
		Severity: SeverityError,
		Primary:  primary,
		Message:  fmt.Sprintf(format, args...),
		Notes:    buildCallStackNotes(vm.callStackNotes(), vm.allocationNumber),
	})
}

// reportDiagnostic emits a diagnostic attributed to the current frame's
// currently-executing instruction.
func (vm *VM) reportDiagnostic(instr Instruction, message string) {
	top := vm.top()
	primary := SourceRange{}
	if top.pc < len(top.fn.SrcTokens) {
		primary = top.fn.SrcTokens[top.pc]
	}
	vm.emitDiagnostic(primary, "%s", message)
}

// step decodes and executes exactly one instruction of the current top
// frame, per the teacher's execInstructions dispatch shape: pc is
// recorded before the switch body runs, and every case that does not
// return early falls through to the shared "advance pc" tail. Calls and
// returns return early; popFrame advances the caller's pc once the callee
// returns.
func (vm *VM) step() {
	top := vm.top()
	instr := top.fn.Instructions[top.pc]
	slot := len(top.fn.Allocas) + top.pc
	nextPC := top.pc + 1
	vm.logger.Debugw("comptime step", "function", top.fn.Name, "pc", top.pc, "op", instr.Op.String())

	switch instr.Op {
	case OpNop:

	case OpConstI1, OpConstI8, OpConstI16, OpConstI32, OpConstI64, OpConstF32, OpConstF64:
		top.values[slot] = instr.Imm

	case OpLoadI32LE, OpLoadI32BE:
		addr := PtrT(top.values[instr.Operands[0]])
		info := top.fn.MemoryAccessCheckInfos[instr.SideTable]
		if ok, reason := vm.Memory.CheckDereference(addr, info.ElemType); !ok {
			vm.reportDiagnostic(instr, reason)
		} else {
			obj, off, _ := vm.Memory.findObject(addr)
			order := littleOrBig(instr.Op == OpLoadI32BE)
			top.values[slot] = uint64(order.Uint32(obj.backing()[off : off+4]))
		}

	case OpStoreI32LE, OpStoreI32BE:
		addr := PtrT(top.values[instr.Operands[0]])
		info := top.fn.MemoryAccessCheckInfos[instr.SideTable]
		if ok, reason := vm.Memory.CheckDereference(addr, info.ElemType); !ok {
			vm.reportDiagnostic(instr, reason)
		} else {
			obj, off, _ := vm.Memory.findObject(addr)
			order := littleOrBig(instr.Op == OpStoreI32BE)
			order.PutUint32(obj.backing()[off:off+4], uint32(top.values[instr.Operands[1]]))
			if ho, isHeap := obj.(*heapObject); isHeap {
				ho.initBits.setRange(off, off+4, true)
			}
		}

	case OpZExt:
		top.values[slot] = top.values[instr.Operands[0]]
	case OpSExt:
		top.values[slot] = uint64(int64(int32(uint32(top.values[instr.Operands[0]]))))
	case OpTrunc:
		top.values[slot] = uint64(uint32(top.values[instr.Operands[0]]))

	case OpIntToFloat:
		top.values[slot] = math.Float64bits(float64(int32(uint32(top.values[instr.Operands[0]]))))
	case OpFloatToInt:
		top.values[slot] = uint64(uint32(int32(math.Float64frombits(top.values[instr.Operands[0]]))))

	case OpAddI32:
		top.values[slot] = uint64(uint32(top.values[instr.Operands[0]]) + uint32(top.values[instr.Operands[1]]))
	case OpSubI32:
		top.values[slot] = uint64(uint32(top.values[instr.Operands[0]]) - uint32(top.values[instr.Operands[1]]))
	case OpMulI32:
		top.values[slot] = uint64(uint32(top.values[instr.Operands[0]]) * uint32(top.values[instr.Operands[1]]))
	case OpDivI32:
		r := int32(uint32(top.values[instr.Operands[1]]))
		if r == 0 {
			vm.reportDiagnostic(instr, "integer division by zero")
		} else {
			top.values[slot] = uint64(uint32(int32(uint32(top.values[instr.Operands[0]])) / r))
		}

	case OpAddI32Checked, OpSubI32Checked, OpMulI32Checked, OpDivI32Checked:
		vm.execCheckedArith(instr, slot)

	case OpNegI32Checked:
		v := int32(uint32(top.values[vm.rhsOperand(instr, 0)]))
		result := -v
		top.values[slot] = uint64(uint32(result))
		if v == math.MinInt32 {
			vm.reportDiagnostic(instr, "negation of INT32_MIN overflows")
		}

	case OpAddF64:
		top.values[slot] = math.Float64bits(math.Float64frombits(top.values[instr.Operands[0]]) + math.Float64frombits(top.values[instr.Operands[1]]))
	case OpAddF64Checked:
		a := math.Float64frombits(top.values[instr.Operands[0]])
		b := math.Float64frombits(top.values[instr.Operands[1]])
		sum := a + b
		top.values[slot] = math.Float64bits(sum)
		if !math.IsInf(a, 0) && !math.IsInf(b, 0) && math.IsInf(sum, 0) {
			vm.reportDiagnostic(instr, "floating-point addition overflows to infinity")
		}

	case OpCmpEqI32:
		top.values[slot] = boolU64(uint32(top.values[instr.Operands[0]]) == uint32(top.values[instr.Operands[1]]))
	case OpCmpLtI32:
		top.values[slot] = boolU64(int32(uint32(top.values[instr.Operands[0]])) < int32(uint32(top.values[instr.Operands[1]])))

	case OpAndI32:
		top.values[slot] = uint64(uint32(top.values[instr.Operands[0]]) & uint32(top.values[instr.Operands[1]]))
	case OpOrI32:
		top.values[slot] = uint64(uint32(top.values[instr.Operands[0]]) | uint32(top.values[instr.Operands[1]]))
	case OpXorI32:
		top.values[slot] = uint64(uint32(top.values[instr.Operands[0]]) ^ uint32(top.values[instr.Operands[1]]))
	case OpShlI32:
		top.values[slot] = uint64(uint32(top.values[instr.Operands[0]]) << (uint32(top.values[instr.Operands[1]]) & 31))
	case OpShrI32:
		top.values[slot] = uint64(uint32(top.values[instr.Operands[0]]) >> (uint32(top.values[instr.Operands[1]]) & 31))

	case OpSqrtF64:
		top.values[slot] = math.Float64bits(math.Sqrt(math.Float64frombits(top.values[instr.Operands[0]])))
	case OpSqrtF64Checked:
		v := math.Float64frombits(top.values[instr.Operands[0]])
		top.values[slot] = math.Float64bits(math.Sqrt(v))
		if v < 0 {
			vm.reportDiagnostic(instr, "sqrt of a negative value")
		}

	case OpPopcountI32:
		top.values[slot] = uint64(bits.OnesCount32(uint32(top.values[instr.Operands[0]])))
	case OpClzI32:
		top.values[slot] = uint64(bits.LeadingZeros32(uint32(top.values[instr.Operands[0]])))
	case OpCtzI32:
		top.values[slot] = uint64(bits.TrailingZeros32(uint32(top.values[instr.Operands[0]])))
	case OpByteSwapI32:
		top.values[slot] = uint64(Byteswap32(uint32(top.values[instr.Operands[0]])))
	case OpBitReverseI32:
		top.values[slot] = uint64(bits.Reverse32(uint32(top.values[instr.Operands[0]])))

	case OpGEPConst:
		base := PtrT(top.values[instr.Operands[0]])
		info := top.fn.MemoryAccessCheckInfos[instr.SideTable]
		top.values[slot] = uint64(vm.Memory.DoGEP(base, info.ElemType, instr.Imm))

	case OpGEPArrayIndexU, OpGEPArrayIndexS:
		base := PtrT(top.values[instr.Operands[0]])
		index := vm.rhsOperand(instr, 1)
		info := top.fn.MemoryAccessCheckInfos[instr.SideTable]
		top.values[slot] = uint64(vm.Memory.DoGEP(base, info.ElemType, index))

	case OpPtrAdd:
		base := PtrT(top.values[instr.Operands[0]])
		offset := int64(vm.rhsOperand(instr, 1))
		info := top.fn.PointerArithmeticCheckInfos[instr.SideTable]
		addr, status := vm.Memory.DoPointerArithmetic(base, offset, info.ElemType)
		if status == ArithFail {
			vm.reportDiagnostic(instr, "pointer arithmetic result is out of bounds")
		} else {
			top.values[slot] = uint64(addr)
		}

	case OpMalloc:
		info := top.fn.MemoryAccessCheckInfos[instr.SideTable]
		count := vm.rhsOperand(instr, 0)
		addr, ok := vm.Memory.Malloc(info.ElemType, count)
		if !ok {
			vm.reportDiagnostic(instr, "heap segment exhausted")
		}
		top.values[slot] = uint64(addr)

	case OpFree:
		addr := PtrT(top.values[instr.Operands[0]])
		switch vm.Memory.Free(addr) {
		case FreeDoubleFree:
			vm.reportDiagnostic(instr, "double free")
		case FreeInsideObject:
			vm.reportDiagnostic(instr, "free called with a pointer not at the start of its allocation")
		case FreeUnknownAddress:
			vm.reportDiagnostic(instr, "free called with an address the heap never allocated")
		}

	case OpMemcpyConst:
		dst := PtrT(top.values[instr.Operands[0]])
		data := top.fn.AddGlobalArrayDataInfos[instr.SideTable].Data
		obj, off, ok := vm.Memory.findObject(dst)
		if !ok {
			panicInternal("memcpy.const: destination 0x%x is not a live object", uint64(dst))
		}
		copy(obj.backing()[off:off+uint64(len(data))], data)
		if ho, isHeap := obj.(*heapObject); isHeap {
			ho.initBits.setRange(off, off+uint64(len(data)), true)
		}

	case OpMemsetZero:
		dst := PtrT(top.values[instr.Operands[0]])
		n := instr.Imm
		obj, off, ok := vm.Memory.findObject(dst)
		if !ok {
			panicInternal("memset.zero: destination 0x%x is not a live object", uint64(dst))
		}
		for i := uint64(0); i < n; i++ {
			obj.backing()[off+i] = 0
		}
		if ho, isHeap := obj.(*heapObject); isHeap {
			ho.initBits.setRange(off, off+n, true)
		}

	case OpCopyValues, OpCopyOverlappingValues, OpRelocateValues:
		dst := PtrT(top.values[instr.Operands[0]])
		src := PtrT(top.values[instr.Operands[1]])
		info := top.fn.CopyValuesInfos[instr.SideTable]
		if !vm.Memory.CopyValues(dst, src, info.ElemType, info.Count) {
			panicInternal("%s: source or destination is not a live object", instr.Op)
		}

	case OpJump:
		nextPC = int(instr.Operands[0])

	case OpJumpIf:
		if top.values[instr.Operands[0]] != 0 {
			nextPC = int(instr.Operands[1])
		} else {
			nextPC = int(instr.Operands[2])
		}

	case OpSwitchI32:
		info := top.fn.SwitchInfos[instr.SideTable]
		val := int64(int32(uint32(top.values[instr.Operands[0]])))
		nextPC = int(info.Default)
		for i, v := range info.Values {
			if v == val {
				nextPC = int(info.Targets[i])
				break
			}
		}

	case OpSwitchStr:
		// String-keyed switches are addressed the same way as OpSwitchI32
		// but over interned string side-table entries; out of scope for
		// the runtime value representation this VM carries (strings live
		// as slices in the source language's object model, not as a
		// scalar slot value), so the generator never emits this form
		// without also emitting a SwitchInfo-shaped fallback. Left
		// unreachable here.
		panicInternal("switch.str: string-keyed dispatch requires front-end string representation")

	case OpReturn:
		retVal := top.values[instr.Operands[0]]
		vm.popFrame(retVal, true)
		return

	case OpReturnVoid:
		vm.popFrame(0, false)
		return

	case OpUnreachable:
		panicInternal("reached an unreachable instruction in %q", top.fn.Name)

	case OpCallDirect:
		callee := top.fn.Callees[instr.SideTable]
		argSlots := top.fn.CallArgs[instr.SideTable]
		args := make([]uint64, len(argSlots))
		for i, s := range argSlots {
			args[i] = top.values[s]
		}
		callSite := SourceRange{}
		if top.pc < len(top.fn.SrcTokens) {
			callSite = top.fn.SrcTokens[top.pc]
		}
		vm.pushFrame(callee, args, slot, callSite)
		return

	case OpCallIndirect:
		fnPtr := PtrT(top.values[instr.Operands[0]])
		callee, ok := vm.Memory.ResolveFunctionPointer(fnPtr)
		if !ok {
			vm.reportDiagnostic(instr, "call through an invalid function pointer")
			break
		}
		argSlots := top.fn.CallArgs[instr.SideTable]
		args := make([]uint64, len(argSlots))
		for i, s := range argSlots {
			args[i] = top.values[s]
		}
		callSite := SourceRange{}
		if top.pc < len(top.fn.SrcTokens) {
			callSite = top.fn.SrcTokens[top.pc]
		}
		vm.pushFrame(callee, args, slot, callSite)
		return

	case OpArrayBoundsCheckS32, OpArrayBoundsCheckU32, OpArrayBoundsCheckS64, OpArrayBoundsCheckU64:
		info := top.fn.MemoryAccessCheckInfos[instr.SideTable]
		index := top.values[instr.Operands[0]]
		var outOfBounds bool
		if info.Signed {
			outOfBounds = int64(index) < 0 || int64(index) >= int64(info.Count)
		} else {
			outOfBounds = index >= uint64(info.Count)
		}
		if outOfBounds {
			vm.reportDiagnostic(instr, fmt.Sprintf("array index %d is out of bounds for an array of size %d", int64(index), info.Count))
		}

	case OpOptionalGetValueCheck:
		addr := PtrT(top.values[instr.Operands[0]])
		info := top.fn.MemoryAccessCheckInfos[instr.SideTable]
		obj, off, ok := vm.Memory.findObject(addr)
		if !ok {
			panicInternal("check.optional_get_value: 0x%x is not a live object", uint64(addr))
		}
		discByte := obj.backing()[off+uint64(info.ElemType.Size())-1]
		if discByte == 0 {
			vm.reportDiagnostic(instr, "get_value called on an optional holding no value")
		}

	case OpSliceConstructionCheck:
		begin := PtrT(top.values[instr.Operands[0]])
		end := PtrT(top.values[instr.Operands[1]])
		info := top.fn.SliceConstructionCheckInfos[instr.SideTable]
		if ok, reason := vm.Memory.CheckSliceConstruction(begin, end, info.ElemType); !ok {
			vm.reportDiagnostic(instr, reason)
		}

	case OpStringConstructionCheck:
		begin := PtrT(top.values[instr.Operands[0]])
		end := PtrT(top.values[instr.Operands[1]])
		if ok, reason := vm.Memory.CheckSliceConstruction(begin, end, vm.Registry.InternBuiltin(BuiltinI8)); !ok {
			vm.reportDiagnostic(instr, reason)
		}

	case OpPointerArithmeticCheck:
		base := PtrT(top.values[instr.Operands[0]])
		offset := int64(vm.rhsOperand(instr, 1))
		info := top.fn.PointerArithmeticCheckInfos[instr.SideTable]
		if _, status := vm.Memory.DoPointerArithmetic(base, offset, info.ElemType); status == ArithFail {
			vm.reportDiagnostic(instr, "pointer arithmetic result is out of bounds")
		}

	case OpPointerComparisonCheck:
		lhs := PtrT(top.values[instr.Operands[0]])
		rhs := PtrT(top.values[instr.Operands[1]])
		result := vm.Memory.ComparePointers(lhs, rhs)
		if result == CmpUnrelated {
			vm.reportDiagnostic(instr, "relational comparison of pointers into different objects")
		}
		top.values[slot] = uint64(result)

	case OpFloatOrderingCheck:
		a := math.Float64frombits(top.values[instr.Operands[0]])
		b := math.Float64frombits(top.values[instr.Operands[1]])
		if math.IsNaN(a) || math.IsNaN(b) {
			vm.reportDiagnostic(instr, "ordered comparison of a NaN value")
		}

	case OpStartLifetime:
		vm.Memory.LifetimeStart(top.memFrame.objects[int(instr.Imm)])
	case OpEndLifetime:
		vm.Memory.LifetimeEnd(top.memFrame.objects[int(instr.Imm)])

	case OpError:
		vm.reportDiagnostic(instr, top.fn.Errors[instr.SideTable])

	case OpPrint:
		vm.logger.Infow("comptime print", "function", top.fn.Name, "value", top.values[instr.Operands[0]])

	case OpDiagnosticStr:
		if len(vm.diagnostics) > 0 {
			last := &vm.diagnostics[len(vm.diagnostics)-1]
			last.Notes = append(last.Notes, DiagnosticNote{Message: top.fn.Errors[instr.SideTable]})
		}

	case OpIsOptionSet:
		top.values[slot] = boolU64(vm.Options.Verbose)

	default:
		panicInternal("unimplemented opcode %s", instr.Op)
	}

	if len(vm.frames) > 0 && vm.top() == top {
		top.pc = nextPC
	}
}

// execCheckedArith handles the four checked i32 arithmetic opcodes: each
// writes the wrapped (two's complement) result and, only on overflow,
// reports a diagnostic — the defined "continue with a dummy result"
// behavior of spec.md §7.
func (vm *VM) execCheckedArith(instr Instruction, slot int) {
	top := vm.top()
	l := int32(uint32(top.values[instr.Operands[0]]))
	r := int32(vm.rhsOperand(instr, 1))

	var wide int64
	var opName string
	switch instr.Op {
	case OpAddI32Checked:
		wide, opName = int64(l)+int64(r), "addition"
	case OpSubI32Checked:
		wide, opName = int64(l)-int64(r), "subtraction"
	case OpMulI32Checked:
		wide, opName = int64(l)*int64(r), "multiplication"
	case OpDivI32Checked:
		if r == 0 {
			vm.reportDiagnostic(instr, "integer division by zero")
			top.values[slot] = 0
			return
		}
		wide, opName = int64(l)/int64(r), "division"
	}

	result := int32(wide)
	top.values[slot] = uint64(uint32(result))
	if wide != int64(result) {
		vm.reportDiagnostic(instr, fmt.Sprintf("signed 32-bit %s overflows", opName))
	}
}

// rhsOperand reads operand index idx as a slot reference when non-negative,
// or falls back to the instruction's inline immediate — the convention
// used throughout spec.md §4.C for instructions that accept either a
// register or a constant right-hand side.
func (vm *VM) rhsOperand(instr Instruction, idx int) uint64 {
	if instr.Operands[idx] >= 0 {
		return vm.top().values[instr.Operands[idx]]
	}
	return instr.Imm
}

func boolU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func littleOrBig(big bool) binary.ByteOrder {
	if big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// writeRawValue stores a scalar/pointer value's raw bit pattern into dst in
// the configured endianness, per t's builtin kind. Used to seed a callee's
// parameter-alloca bytes at call time.
func writeRawValue(dst []byte, t *Type, raw uint64, e Endianness) {
	order := endianOrder(e)
	switch t.Kind() {
	case KindPointer:
		order.PutUint64(dst, raw)
	case KindBuiltin:
		switch t.Builtin() {
		case BuiltinI1, BuiltinI8:
			dst[0] = byte(raw)
		case BuiltinI16:
			order.PutUint16(dst, uint16(raw))
		case BuiltinI32, BuiltinF32:
			order.PutUint32(dst, uint32(raw))
		case BuiltinI64, BuiltinF64:
			order.PutUint64(dst, raw)
		}
	}
}
