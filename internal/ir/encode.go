package ir

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/funvibe/liftc/internal/typesystem"
)

// Binary artifact format, little-endian throughout:
//
//	magic "LFTC", format version u16
//	build id, 16 bytes (UUID)
//	layout contract: header size u8, slot size u8, cell size u8
//	function count u32, then per function:
//	  index u32, arity u32, capture count u32,
//	  name (u16 length + bytes),
//	  one type tag per parameter (u8), result type tag (u8)
//	table initializer: entry count u32 + u32 per entry
//
// Function bodies are not part of this artifact; the backend emitter
// compiles them from the abstract operations directly.
const (
	artifactMagic   = "LFTC"
	artifactVersion = 1
)

// Type tags used in the artifact.
const (
	tagI64 byte = iota
	tagF64
	tagBool
	tagFunc // Closure record address
)

func typeTag(t typesystem.Type) byte {
	switch tt := t.(type) {
	case typesystem.Scalar:
		switch tt {
		case typesystem.F64:
			return tagF64
		case typesystem.Bool:
			return tagBool
		}
		return tagI64
	case typesystem.Function:
		return tagFunc
	}
	return tagI64
}

// EncodeModule serializes the table initializer and function signatures for
// the backend emitter.
func EncodeModule(m *Module) ([]byte, error) {
	id, err := uuid.Parse(m.BuildID)
	if err != nil {
		return nil, fmt.Errorf("invalid build id %q: %w", m.BuildID, err)
	}

	var buf bytes.Buffer
	buf.WriteString(artifactMagic)
	writeU16(&buf, artifactVersion)
	buf.Write(id[:])

	buf.WriteByte(HeaderSize)
	buf.WriteByte(SlotSize)
	buf.WriteByte(CellSize)

	writeU32(&buf, uint32(len(m.Funcs)))
	for _, fn := range m.Funcs {
		writeU32(&buf, uint32(fn.Index))
		writeU32(&buf, uint32(fn.Arity()))
		writeU32(&buf, uint32(len(fn.FreeVars)))

		if len(fn.Name) > 0xffff {
			return nil, fmt.Errorf("function name too long: %d bytes", len(fn.Name))
		}
		writeU16(&buf, uint16(len(fn.Name)))
		buf.WriteString(fn.Name)

		for _, p := range fn.Params {
			buf.WriteByte(typeTag(p.Typ))
		}
		result := fn.Body.Type()
		if result == nil {
			result = typesystem.I64
		}
		buf.WriteByte(typeTag(result))
	}

	table := m.Table()
	writeU32(&buf, uint32(len(table)))
	for _, idx := range table {
		writeU32(&buf, uint32(idx))
	}

	return buf.Bytes(), nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
