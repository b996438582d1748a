package comptime

import (
	"encoding/binary"
	"math"
)

// ConstantValueKind discriminates the driver-facing constant-value
// representation this bridge serializes to/from object bytes, per
// spec.md §6. The front end's full constant-value type is out of scope —
// this is the minimal closed set the bridge needs to round-trip.
type ConstantValueKind uint8

const (
	CVNull ConstantValueKind = iota
	CVInt
	CVFloat
	CVTuple
	CVStruct
	CVOptional
	CVArray
	CVOpaque // string / function / slice / void — driver handles specially
)

// ConstantValue is the minimal bridge-facing representation described in
// spec.md §6.
type ConstantValue struct {
	Kind ConstantValueKind

	Int   int64
	Float float64

	// Present (non-nil) iff Kind is an optional that holds a value.
	OptionalValue *ConstantValue

	// Elements for Tuple / Struct / Array.
	Elements []ConstantValue
}

func endianOrder(e Endianness) binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ObjectFromConstantValue recursively serializes v into size(t) bytes,
// per spec.md §6. null zeroes the entire buffer.
func ObjectFromConstantValue(v ConstantValue, t *Type, e Endianness) []byte {
	buf := make([]byte, t.Size())
	writeConstantValue(buf, v, t, e)
	return buf
}

func writeConstantValue(buf []byte, v ConstantValue, t *Type, e Endianness) {
	order := endianOrder(e)

	if v.Kind == CVNull {
		for i := range buf {
			buf[i] = 0
		}
		return
	}

	switch t.Kind() {
	case KindBuiltin:
		switch t.Builtin() {
		case BuiltinI1:
			if v.Int != 0 {
				buf[0] = 1
			} else {
				buf[0] = 0
			}
		case BuiltinI8:
			buf[0] = byte(v.Int)
		case BuiltinI16:
			order.PutUint16(buf, uint16(v.Int))
		case BuiltinI32:
			order.PutUint32(buf, uint32(v.Int))
		case BuiltinI64:
			order.PutUint64(buf, uint64(v.Int))
		case BuiltinF32:
			order.PutUint32(buf, math.Float32bits(float32(v.Float)))
		case BuiltinF64:
			order.PutUint64(buf, math.Float64bits(v.Float))
		}
	case KindPointer:
		order.PutUint64(buf, uint64(v.Int))
	case KindArray:
		elemSize := t.ElemType().Size()
		for i, elem := range v.Elements {
			off := uint32(i) * elemSize
			writeConstantValue(buf[off:off+elemSize], elem, t.ElemType(), e)
		}
	case KindAggregate:
		if v.Kind == CVOptional {
			// Discriminant byte at the trailing offset, per spec.md §6.
			buf[len(buf)-1] = 0
			if v.OptionalValue != nil {
				buf[len(buf)-1] = 1
				writeConstantValue(buf[:t.Offsets()[0]+t.Members()[0].Size()], *v.OptionalValue, t.Members()[0], e)
			}
			return
		}
		for i, member := range t.Members() {
			off := t.Offsets()[i]
			if i < len(v.Elements) {
				writeConstantValue(buf[off:off+member.Size()], v.Elements[i], member, e)
			}
		}
	}
}

// ConstantValueFromObject is the inverse of ObjectFromConstantValue: it
// decodes from the declared semantic type, which (unlike the structural
// Type) distinguishes tuples from structs and optionals from
// always-present values — per spec.md §6.
func ConstantValueFromObject(data []byte, t *Type, semantic ConstantValueKind, e Endianness) ConstantValue {
	order := endianOrder(e)

	switch t.Kind() {
	case KindBuiltin:
		switch t.Builtin() {
		case BuiltinI1:
			return ConstantValue{Kind: CVInt, Int: int64(data[0])}
		case BuiltinI8:
			return ConstantValue{Kind: CVInt, Int: int64(int8(data[0]))}
		case BuiltinI16:
			return ConstantValue{Kind: CVInt, Int: int64(int16(order.Uint16(data)))}
		case BuiltinI32:
			return ConstantValue{Kind: CVInt, Int: int64(int32(order.Uint32(data)))}
		case BuiltinI64:
			return ConstantValue{Kind: CVInt, Int: int64(order.Uint64(data))}
		case BuiltinF32:
			return ConstantValue{Kind: CVFloat, Float: float64(math.Float32frombits(order.Uint32(data)))}
		case BuiltinF64:
			return ConstantValue{Kind: CVFloat, Float: math.Float64frombits(order.Uint64(data))}
		}
	case KindPointer:
		return ConstantValue{Kind: CVInt, Int: int64(order.Uint64(data))}
	case KindArray:
		elemSize := t.ElemType().Size()
		elems := make([]ConstantValue, t.ArrayCount())
		for i := range elems {
			off := uint32(i) * elemSize
			elems[i] = ConstantValueFromObject(data[off:off+elemSize], t.ElemType(), semantic, e)
		}
		return ConstantValue{Kind: CVArray, Elements: elems}
	case KindAggregate:
		if semantic == CVOptional {
			if data[len(data)-1] == 0 {
				return ConstantValue{Kind: CVOptional}
			}
			inner := t.Members()[0]
			v := ConstantValueFromObject(data[t.Offsets()[0]:t.Offsets()[0]+inner.Size()], inner, CVInt, e)
			return ConstantValue{Kind: CVOptional, OptionalValue: &v}
		}

		elems := make([]ConstantValue, len(t.Members()))
		for i, member := range t.Members() {
			off := t.Offsets()[i]
			elems[i] = ConstantValueFromObject(data[off:off+member.Size()], member, CVInt, e)
		}
		kind := CVStruct
		if semantic == CVTuple {
			kind = CVTuple
		}
		return ConstantValue{Kind: kind, Elements: elems}
	}

	return ConstantValue{Kind: CVOpaque}
}

// Byteswap reverses the byte order of a little/big-endian-agnostic
// unsigned integer. Used by the endianness-aware load/store fast path
// (spec.md §4.C) and is its own inverse (spec.md §8, "Byteswap
// involution").
func Byteswap16(v uint16) uint16 { return v<<8 | v>>8 }

func Byteswap32(v uint32) uint32 {
	v = (v&0xFF00FF00)>>8 | (v&0x00FF00FF)<<8
	return v>>16 | v<<16
}

func Byteswap64(v uint64) uint64 {
	v = (v&0xFF00FF00FF00FF00)>>8 | (v&0x00FF00FF00FF00FF)<<8
	v = (v&0xFFFF0000FFFF0000)>>16 | (v&0x0000FFFF0000FFFF)<<16
	return v>>32 | v<<32
}
