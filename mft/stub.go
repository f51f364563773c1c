package mft

import (
	"fmt"

	"github.com/dfirtools/gomft/binutil"
)

// stubSize is the number of leading bytes read from each entry slot during the stub scan: enough
// to cover the signature (offset 0, 4 bytes), the sequence number (offset 16, 2 bytes), and the
// base record reference (offset 32, 8 bytes), per the canonical entry layout.
const stubSize = 40

type entryStub struct {
	empty              bool
	sequenceNumber     uint16
	baseRecordNumber   uint64
	baseSequenceNumber uint16
}

// scanStubs performs a cheap, fixed-size-prefix-only pass over every entry slot in src to
// discover which slots are empty, which are extensions of another entry's record, and which are
// bases. It returns:
//   - forward: base record number -> the record numbers of entries that are its extensions
//   - reverse: extension record number -> the record number of the base entry it extends
//   - empty: the set of record numbers whose first 4 bytes are all zero
//   - validCount: the number of slots that are neither empty nor an extension
//
// A slot counts as an extension of another slot only when that other slot exists, is not empty,
// and its own sequence number matches the extension's recorded base sequence number - this
// guards against treating a stale or reused base record reference as a live relationship. A slot
// whose base record reference points at itself is always treated as a base, never an extension.
func scanStubs(src Source, entrySize int, count int) (forward map[uint64][]uint64, reverse map[uint64]uint64, empty map[uint64]bool, validCount int, err error) {
	stubs := make([]entryStub, count)
	buf := make([]byte, stubSize)

	for i := 0; i < count; i++ {
		if _, rerr := src.ReadAt(buf, int64(i)*int64(entrySize)); rerr != nil {
			return nil, nil, nil, 0, &MFTError{Msg: fmt.Sprintf("unable to read stub for entry %d: %v", i, rerr)}
		}
		if binutil.IsOnlyZeroes(buf[:4]) {
			stubs[i] = entryStub{empty: true}
			continue
		}
		r := binutil.NewLittleEndianReader(buf)
		baseRef := ParseFileReference(r.Uint64(32))
		stubs[i] = entryStub{
			sequenceNumber:     r.Uint16(16),
			baseRecordNumber:   baseRef.RecordNumber,
			baseSequenceNumber: baseRef.SequenceNumber,
		}
	}

	forward = map[uint64][]uint64{}
	reverse = map[uint64]uint64{}
	empty = map[uint64]bool{}

	for i, s := range stubs {
		recordNumber := uint64(i)
		if s.empty {
			empty[recordNumber] = true
			continue
		}

		isSelfReferential := s.baseRecordNumber == recordNumber
		if !isSelfReferential && s.baseRecordNumber != 0 && int(s.baseRecordNumber) < len(stubs) {
			base := stubs[s.baseRecordNumber]
			if !base.empty && base.sequenceNumber == s.baseSequenceNumber {
				forward[s.baseRecordNumber] = append(forward[s.baseRecordNumber], recordNumber)
				reverse[recordNumber] = s.baseRecordNumber
				continue
			}
		}
		validCount++
	}

	return forward, reverse, empty, validCount, nil
}
