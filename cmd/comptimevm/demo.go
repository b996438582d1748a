package main

import "github.com/Il-Capitano/bozon-comptime/comptime"

// buildDemoFunction constructs one of a handful of fixture Functions by
// name. Bytecode generation from source is explicitly out of scope for
// this repository (spec.md §1: the front end and generator are external
// collaborators) — a real driver would receive Functions already built by
// that generator. This demo stands in for that generator with a few
// functions assembled directly against the comptime package's Go API, the
// same way the executor_test.go fixtures are built.
func buildDemoFunction(registry *comptime.TypeRegistry, name string) (*comptime.Function, []uint64, bool) {
	i32 := registry.InternBuiltin(comptime.BuiltinI32)

	switch name {
	case "overflow":
		fn := &comptime.Function{
			Name:       "add_checked_demo",
			ReturnType: i32,
			Instructions: []comptime.Instruction{
				constI32(0x7fffffff),
				addI32CheckedImm(0, 1),
				ret(1),
			},
		}
		return fn, nil, true

	case "bounds":
		arrT := registry.InternArray(i32, 4)
		fn := &comptime.Function{
			Name:       "array_oob_demo",
			ReturnType: i32,
			Allocas:    []comptime.Alloca{{Type: arrT, AlwaysInitialized: true}},
			MemoryAccessCheckInfos: []comptime.MemoryAccessCheckInfo{
				{ElemType: arrT, Width: 32},
				{ElemType: i32, Width: 32},
			},
			Instructions: []comptime.Instruction{
				constI32(4),
				gepArrayU(0, 1, 0),
				storeI32(2, 1, 1),
				constI32(0),
				ret(3),
			},
		}
		return fn, nil, true

	default:
		return nil, nil, false
	}
}

func constI32(v int32) comptime.Instruction {
	i := comptime.NewInstruction(comptime.OpConstI32)
	i.Imm = uint64(uint32(v))
	return i
}

func addI32CheckedImm(leftSlot int32, rightImm uint64) comptime.Instruction {
	i := comptime.NewInstruction(comptime.OpAddI32Checked)
	i.Operands[0] = leftSlot
	i.Imm = rightImm
	return i
}

func gepArrayU(baseSlot, indexSlot int32, sideTable int32) comptime.Instruction {
	i := comptime.NewInstruction(comptime.OpGEPArrayIndexU)
	i.Operands[0] = baseSlot
	i.Operands[1] = indexSlot
	i.SideTable = sideTable
	return i
}

func storeI32(addrSlot, valueSlot int32, sideTable int32) comptime.Instruction {
	i := comptime.NewInstruction(comptime.OpStoreI32LE)
	i.Operands[0] = addrSlot
	i.Operands[1] = valueSlot
	i.SideTable = sideTable
	return i
}

func ret(slot int32) comptime.Instruction {
	i := comptime.NewInstruction(comptime.OpReturn)
	i.Operands[0] = slot
	return i
}
