package mft

import (
	"bytes"
	"fmt"

	"github.com/dfirtools/gomft/binutil"
)

// applyFixUp applies the fixup (update sequence) array in place on b, an entry buffer of
// entrySize bytes. fxOffset and fxCount are the raw values from the entry header: fxCount
// counts the 2-byte update sequence number plus one array entry per sector, so there are
// fxCount-1 sectors to patch.
//
// The last two bytes of every sector are expected to hold the update sequence number (the
// array's first entry); the remaining array entries are the real sector-ending bytes, written
// back over those positions. A mismatch means the entry is corrupt or was read with stale/torn
// sectors, and is reported before any byte is patched.
func applyFixUp(b []byte, fxOffset int, fxCount int, entrySize int) error {
	if fxCount <= 1 {
		return nil
	}
	if entrySize <= 0 {
		return &FixUpError{Offset: fxOffset, Msg: fmt.Sprintf("invalid entry size %d", entrySize)}
	}

	sectorCount := fxCount - 1
	sectorSize := entrySize / sectorCount
	if sectorSize <= 2 {
		return &FixUpError{Offset: fxOffset, Msg: fmt.Sprintf("invalid sector size %d for entry size %d and fixup count %d", sectorSize, entrySize, fxCount)}
	}

	r := binutil.NewLittleEndianReader(b)
	if !r.HasLength(fxOffset, fxCount*2) {
		return &FixUpError{Offset: fxOffset, Msg: "fixup array exceeds entry bounds"}
	}
	array := r.Read(fxOffset, fxCount*2)
	signature := array[:2]
	substitutions := array[2:]

	for i := 1; i <= sectorCount; i++ {
		pos := sectorSize*i - 2
		if !bytes.Equal(signature, b[pos:pos+2]) {
			return &FixUpError{Offset: pos, Msg: "fixup signature mismatch at sector boundary"}
		}
	}

	for i := 0; i < sectorCount; i++ {
		pos := sectorSize*(i+1) - 2
		sub := i * 2
		copy(b[pos:pos+2], substitutions[sub:sub+2])
	}

	return nil
}
