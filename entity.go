package silo

import "encoding/binary"

// Entity is a lightweight handle made of three indices: the entity type it
// belongs to, a generation counter for lifetime tracking, and the logical
// index within the type. It is a value, not a pointer; all operations on it
// go through a Context.
type Entity struct {
	Type       EntityTypeID
	Generation uint16
	Index      uint32
}

const entityWireSize = 8

// MarshalBinary encodes the handle as 8 little-endian bytes: type,
// generation, index. The encoding is only meaningful within the Context
// that issued the handle, and only until a Clear or a matching destroy
// bumps the slot generation.
func (e Entity) MarshalBinary() ([]byte, error) {
	buf := make([]byte, entityWireSize)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(e.Type))
	binary.LittleEndian.PutUint16(buf[2:4], e.Generation)
	binary.LittleEndian.PutUint32(buf[4:8], e.Index)
	return buf, nil
}

// UnmarshalBinary decodes a handle previously produced by MarshalBinary.
func (e *Entity) UnmarshalBinary(data []byte) error {
	if len(data) != entityWireSize {
		return InvalidHandleError{Len: len(data)}
	}
	e.Type = EntityTypeID(binary.LittleEndian.Uint16(data[0:2]))
	e.Generation = binary.LittleEndian.Uint16(data[2:4])
	e.Index = binary.LittleEndian.Uint32(data[4:8])
	return nil
}
