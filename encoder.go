package runeway

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Persisted bytecode container.  The format is internal: the only
// guarantees are round-trip fidelity and stability within one build.

var bytecodeMagic = [4]byte{'R', 'N', 'W', 'C'}

const bytecodeVersion = 1

var (
	appendU16 = binary.LittleEndian.AppendUint16
	appendU32 = binary.LittleEndian.AppendUint32
	appendU64 = binary.LittleEndian.AppendUint64
)

// EncodeApplication serialises the application into a self-describing
// byte buffer.
func EncodeApplication(app *CompiledApplication) []byte {
	var out []byte
	out = append(out, bytecodeMagic[:]...)
	out = append(out, bytecodeVersion)

	out = appendU16(out, uint16(app.EntryModule))
	out = appendString(out, app.EntryFunction)

	out = appendU16(out, uint16(len(app.Consts)))
	for _, value := range app.Consts {
		out = append(out, byte(value.Kind))
		out = appendString(out, value.Str)
	}

	out = appendU16(out, uint16(len(app.Modules)))
	for _, module := range app.Modules {
		if module.Standard {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
		out = appendString(out, module.Name)
		out = appendU16(out, uint16(len(module.Items)))
		for _, item := range module.Items {
			out = appendItem(out, item)
		}
	}
	return out
}

func appendString(out []byte, s string) []byte {
	out = appendU32(out, uint32(len(s)))
	return append(out, s...)
}

func appendItem(out []byte, item CompiledItem) []byte {
	out = append(out, byte(item.Kind))
	switch item.Kind {
	case ItemKind_Function:
		out = appendString(out, item.Name)
		out = appendU16(out, uint16(len(item.Function.Parameters)))
		for _, param := range item.Function.Parameters {
			out = appendString(out, param)
		}
		out = appendU32(out, uint32(len(item.Function.Ops)))
		for _, op := range item.Function.Ops {
			out = appendOpcode(out, op)
		}
	case ItemKind_Import:
		out = appendString(out, item.ImportPath)
		out = append(out, byte(item.ImportKind))
		out = appendString(out, item.ImportAlias)
		out = appendU16(out, uint16(len(item.Symbols)))
		for _, sym := range item.Symbols {
			out = appendString(out, sym.Original)
			out = appendString(out, sym.Alias)
		}
	}
	return out
}

func appendOpcode(out []byte, op Opcode) []byte {
	out = append(out, byte(op.Kind))
	switch op.Kind {
	case Opcode_PushInt:
		out = appendU64(out, uint64(op.Int))
	case Opcode_PushUInt:
		out = appendU64(out, op.UInt)
	case Opcode_PushFloat:
		out = appendU64(out, math.Float64bits(op.Float))
	case Opcode_DefineFast, Opcode_StoreFast, Opcode_LoadFast:
		out = appendString(out, op.Str)
	case Opcode_LoadConst, Opcode_Call, Opcode_Jump, Opcode_JumpIfTrue,
		Opcode_JumpIfFalse, Opcode_BuildList, Opcode_BuildTuple, Opcode_BuildDict:
		out = appendU32(out, uint32(op.Idx))
	}
	return out
}

// byteReader is a bounds-checked little-endian reader.
type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("truncated bytecode at offset %d", r.pos)
	}
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *byteReader) u8() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *byteReader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *byteReader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *byteReader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *byteReader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeApplication reads back a container produced by
// EncodeApplication.
func DecodeApplication(data []byte) (*CompiledApplication, error) {
	r := &byteReader{data: data}

	magic, err := r.take(4)
	if err != nil {
		return nil, err
	}
	if [4]byte(magic) != bytecodeMagic {
		return nil, fmt.Errorf("not a runeway bytecode file")
	}
	version, err := r.u8()
	if err != nil {
		return nil, err
	}
	if version != bytecodeVersion {
		return nil, fmt.Errorf("unsupported bytecode version %d", version)
	}

	app := &CompiledApplication{}

	entryModule, err := r.u16()
	if err != nil {
		return nil, err
	}
	app.EntryModule = int(entryModule)
	if app.EntryFunction, err = r.str(); err != nil {
		return nil, err
	}

	constCount, err := r.u16()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(constCount); i++ {
		kind, err := r.u8()
		if err != nil {
			return nil, err
		}
		value, err := r.str()
		if err != nil {
			return nil, err
		}
		app.Consts = append(app.Consts, ConstValue{Kind: ConstKind(kind), Str: value})
	}

	moduleCount, err := r.u16()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(moduleCount); i++ {
		module, err := readModule(r)
		if err != nil {
			return nil, err
		}
		app.Modules = append(app.Modules, module)
	}
	return app, nil
}

func readModule(r *byteReader) (CompiledModule, error) {
	var module CompiledModule

	standard, err := r.u8()
	if err != nil {
		return module, err
	}
	module.Standard = standard == 1
	if module.Name, err = r.str(); err != nil {
		return module, err
	}

	itemCount, err := r.u16()
	if err != nil {
		return module, err
	}
	for i := 0; i < int(itemCount); i++ {
		item, err := readItem(r)
		if err != nil {
			return module, err
		}
		module.Items = append(module.Items, item)
	}
	return module, nil
}

func readItem(r *byteReader) (CompiledItem, error) {
	var item CompiledItem

	kind, err := r.u8()
	if err != nil {
		return item, err
	}
	item.Kind = ItemKind(kind)

	switch item.Kind {
	case ItemKind_Function:
		if item.Name, err = r.str(); err != nil {
			return item, err
		}
		paramCount, err := r.u16()
		if err != nil {
			return item, err
		}
		item.Function.Parameters = make([]string, 0, paramCount)
		for i := 0; i < int(paramCount); i++ {
			param, err := r.str()
			if err != nil {
				return item, err
			}
			item.Function.Parameters = append(item.Function.Parameters, param)
		}
		opCount, err := r.u32()
		if err != nil {
			return item, err
		}
		for i := 0; i < int(opCount); i++ {
			op, err := readOpcode(r)
			if err != nil {
				return item, err
			}
			item.Function.Ops = append(item.Function.Ops, op)
		}
	case ItemKind_Import:
		if item.ImportPath, err = r.str(); err != nil {
			return item, err
		}
		importKind, err := r.u8()
		if err != nil {
			return item, err
		}
		item.ImportKind = ImportItemKind(importKind)
		if item.ImportAlias, err = r.str(); err != nil {
			return item, err
		}
		symCount, err := r.u16()
		if err != nil {
			return item, err
		}
		for i := 0; i < int(symCount); i++ {
			var sym ImportSymbol
			if sym.Original, err = r.str(); err != nil {
				return item, err
			}
			if sym.Alias, err = r.str(); err != nil {
				return item, err
			}
			item.Symbols = append(item.Symbols, sym)
		}
	default:
		return item, fmt.Errorf("unknown compiled item kind %d", kind)
	}
	return item, nil
}

func readOpcode(r *byteReader) (Opcode, error) {
	kind, err := r.u8()
	if err != nil {
		return Opcode{}, err
	}
	op := Opcode{Kind: OpKind(kind)}

	switch op.Kind {
	case Opcode_PushInt:
		v, err := r.u64()
		if err != nil {
			return op, err
		}
		op.Int = int64(v)
	case Opcode_PushUInt:
		v, err := r.u64()
		if err != nil {
			return op, err
		}
		op.UInt = v
	case Opcode_PushFloat:
		v, err := r.u64()
		if err != nil {
			return op, err
		}
		op.Float = math.Float64frombits(v)
	case Opcode_DefineFast, Opcode_StoreFast, Opcode_LoadFast:
		if op.Str, err = r.str(); err != nil {
			return op, err
		}
	case Opcode_LoadConst, Opcode_Call, Opcode_Jump, Opcode_JumpIfTrue,
		Opcode_JumpIfFalse, Opcode_BuildList, Opcode_BuildTuple, Opcode_BuildDict:
		v, err := r.u32()
		if err != nil {
			return op, err
		}
		op.Idx = int(v)
	}
	return op, nil
}
