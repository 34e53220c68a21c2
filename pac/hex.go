package pac

import (
	"fmt"
	"io"

	"github.com/marcinbor85/gohex"
)

const (
	HexLineLength = 16   // Data bytes per Intel hex record
	HexPadding    = 0xFF // Fill for gaps between hex segments (erased flash)
)

// Write the given binary (an extracted partition, usually an FDL or
// bootloader blob) as Intel hex, starting at the given load address
func BinToHex(bin []byte, address uint32, w io.Writer) error {
	if uint64(address)+uint64(len(bin)) > 1<<32 {
		return fmt.Errorf("%d bytes at 0x%08X don't fit in 32 bit hex addressing", len(bin), address)
	}
	mem := gohex.NewMemory()
	if len(bin) > 0 {
		if err := mem.AddBinary(address, bin); err != nil {
			return err
		}
	}
	return mem.DumpIntelHex(w, HexLineLength)
}

// Parse Intel hex back into a flat binary. Gaps between segments are filled
// with HexPadding. Returns the data and the address it starts at.
func HexToBin(r io.Reader) ([]byte, uint32, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, 0, err
	}
	segments := mem.GetDataSegments()
	if len(segments) == 0 {
		return []byte{}, 0, nil
	}
	start := segments[0].Address
	end := uint64(start)
	for _, s := range segments {
		if s.Address < start {
			start = s.Address
		}
		if send := uint64(s.Address) + uint64(len(s.Data)); send > end {
			end = send
		}
	}
	return mem.ToBinary(start, uint32(end-uint64(start)), HexPadding), start, nil
}
