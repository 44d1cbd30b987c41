package block

import (
	"encoding/binary"
)

// HeaderSize is the size of the metadata header in bytes.
// It is a multiple of 8, so element storage stays 8-byte aligned.
const HeaderSize = 32

// Signature marks a live header. Release clears it.
const Signature uint32 = 0x5F3C2A

// Header is the metadata stored in front of element storage.
//
// Layout (little endian):
//
//	0  Signature uint32
//	4  ElemSize  uint32
//	8  Count     uint64
//	16 Capacity  uint64
//	24 Rate      uint64
type Header struct {
	Signature uint32
	ElemSize  uint32
	Count     uint64
	Capacity  uint64
	Rate      uint64
}

// Valid reports whether the header carries the live signature.
func (h Header) Valid() bool {
	return h.Signature == Signature
}

func (h Header) put(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], h.Signature)
	binary.LittleEndian.PutUint32(b[4:], h.ElemSize)
	binary.LittleEndian.PutUint64(b[8:], h.Count)
	binary.LittleEndian.PutUint64(b[16:], h.Capacity)
	binary.LittleEndian.PutUint64(b[24:], h.Rate)
}

func readHeader(b []byte) Header {
	return Header{
		Signature: binary.LittleEndian.Uint32(b[0:]),
		ElemSize:  binary.LittleEndian.Uint32(b[4:]),
		Count:     binary.LittleEndian.Uint64(b[8:]),
		Capacity:  binary.LittleEndian.Uint64(b[16:]),
		Rate:      binary.LittleEndian.Uint64(b[24:]),
	}
}
