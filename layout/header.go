package layout

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// HeaderField describes one scalar field of the patch header.
type HeaderField struct {
	Name   string
	Offset uint64
	Width  uint64
}

// HeaderFields is the packed header layout, in order.
var HeaderFields = []HeaderField{
	{Name: "Year", Offset: 0x00, Width: 2},
	{Name: "Day", Offset: 0x02, Width: 1},
	{Name: "Month", Offset: 0x03, Width: 1},
	{Name: "UpdateRevision", Offset: 0x04, Width: 4},
	{Name: "LoaderID", Offset: 0x08, Width: 2},
	{Name: "DataSize", Offset: 0x0A, Width: 1},
	{Name: "InitializationFlag", Offset: 0x0B, Width: 1},
	{Name: "DataChecksum", Offset: 0x0C, Width: 4},
	{Name: "NorthBridgeVEN_ID", Offset: 0x10, Width: 2},
	{Name: "NorthBridgeDEV_ID", Offset: 0x12, Width: 2},
	{Name: "SouthBridgeVEN_ID", Offset: 0x14, Width: 2},
	{Name: "SouthBridgeDEV_ID", Offset: 0x16, Width: 2},
	{Name: "ProcessorSignature", Offset: 0x18, Width: 2},
	{Name: "NorthBridgeREV_ID", Offset: 0x1A, Width: 1},
	{Name: "SouthBridgeREV_ID", Offset: 0x1B, Width: 1},
	{Name: "BiosApiRevision", Offset: 0x1C, Width: 1},
	{Name: "LoadControl", Offset: 0x1D, Width: 1},
	{Name: "Reserved_1E", Offset: 0x1E, Width: 1},
	{Name: "Reserved_1F", Offset: 0x1F, Width: 1},
}

// HeaderValue is a decoded header field.
type HeaderValue struct {
	HeaderField
	Value uint64
}

// Header is a decoded patch header. Values are raw; nothing is validated.
type Header struct {
	Values []HeaderValue
}

// Get returns the value of the named field.
func (h Header) Get(name string) (uint64, bool) {
	for _, v := range h.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// Date renders the Year/Month/Day fields. AMD stores them as BCD-looking hex
// digits, so the raw hex is printed as-is.
func (h Header) Date() string {
	y, _ := h.Get("Year")
	m, _ := h.Get("Month")
	d, _ := h.Get("Day")
	return fmt.Sprintf("%04x-%02x-%02x", y, m, d)
}

func (h Header) String() string {
	var b strings.Builder
	for _, v := range h.Values {
		fmt.Fprintf(&b, "%-20s 0x%0*x\n", v.Name, int(v.Width*2), v.Value)
	}
	return b.String()
}

// DecodeHeader decodes the header from data, which must hold at least
// HeaderSize bytes.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("header needs 0x%x bytes, have 0x%x", HeaderSize, len(data))
	}
	h := Header{Values: make([]HeaderValue, len(HeaderFields))}
	for i, f := range HeaderFields {
		h.Values[i] = HeaderValue{HeaderField: f, Value: readLE(data[f.Offset:], f.Width)}
	}
	return h, nil
}

func readLE(b []byte, width uint64) uint64 {
	switch width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return binary.LittleEndian.Uint64(b)
	}
}
