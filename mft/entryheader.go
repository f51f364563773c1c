package mft

import (
	"bytes"
	"fmt"

	"github.com/dfirtools/gomft/binutil"
)

var (
	fileSignature = []byte("FILE")
	baadSignature = []byte("BAAD")
)

// entryHeaderStaticSize is the size in bytes of an entry's fixed-layout header, ending just
// after the self record number field. The fixup array offset and the first attribute offset are
// both required to be at or beyond this value.
const entryHeaderStaticSize = 48

// RecordFlag is a bit mask describing an entry's allocation and kind.
type RecordFlag uint16

const (
	RecordFlagInUse       RecordFlag = 0x0001
	RecordFlagIsDirectory RecordFlag = 0x0002
	RecordFlagInExtend    RecordFlag = 0x0004
	RecordFlagIsIndex     RecordFlag = 0x0008
)

// Is reports whether f's bit mask contains c.
func (f RecordFlag) Is(c RecordFlag) bool {
	return f&c == c
}

// EntryHeader is the fixed-layout portion of an MFT entry, preceding its attribute list.
type EntryHeader struct {
	BadSignature          bool
	FixUpOffset           int
	FixUpCount            int
	LogFileSequenceNumber uint64
	SequenceNumber        uint16
	HardLinkCount         uint16
	FirstAttributeOffset  int
	Flags                 RecordFlag
	LogicalSize           uint32
	AllocatedSize         uint32
	BaseRecordReference   FileReference
	NextAttributeId       uint16
	RecordNumber          uint64
}

// parseEntryHeader parses b's fixed-layout header. b is assumed to already have had its fixup
// array applied. cfg.IgnoreSignatureCheck relaxes the "FILE"/"BAAD" signature requirement.
func parseEntryHeader(b []byte, cfg *Config) (EntryHeader, error) {
	if len(b) < entryHeaderStaticSize {
		return EntryHeader{}, &HeaderError{Source: HeaderSourceEntry, Msg: fmt.Sprintf("entry header should be at least %d bytes but is %d", entryHeaderStaticSize, len(b))}
	}

	r := binutil.NewLittleEndianReader(b)
	sig := r.Read(0, 4)

	badSignature := false
	if !cfg.IgnoreSignatureCheck {
		switch {
		case bytes.Equal(sig, fileSignature):
			badSignature = false
		case bytes.Equal(sig, baadSignature):
			badSignature = true
		default:
			return EntryHeader{}, &HeaderError{Source: HeaderSourceEntry, Msg: fmt.Sprintf("unknown entry signature %#x", sig)}
		}
	}

	fxOffset := int(r.Uint16(4))
	fxCount := int(r.Uint16(6))
	firstAttributeOffset := int(r.Uint16(20))
	logicalSize := r.Uint32(24)
	allocatedSize := r.Uint32(28)
	baseRef := ParseFileReference(r.Uint64(32))
	selfRecordNumber := uint64(r.Uint32(44))

	if fxOffset < entryHeaderStaticSize {
		return EntryHeader{}, &HeaderError{Source: HeaderSourceEntry, Msg: fmt.Sprintf("fixup array offset %d precedes end of static header (%d)", fxOffset, entryHeaderStaticSize)}
	}
	if firstAttributeOffset < entryHeaderStaticSize {
		return EntryHeader{}, &HeaderError{Source: HeaderSourceEntry, Msg: fmt.Sprintf("first attribute offset %d precedes end of static header (%d)", firstAttributeOffset, entryHeaderStaticSize)}
	}
	if logicalSize > allocatedSize {
		return EntryHeader{}, &HeaderError{Source: HeaderSourceEntry, Msg: fmt.Sprintf("logical size %d exceeds allocated size %d", logicalSize, allocatedSize)}
	}

	return EntryHeader{
		BadSignature:          badSignature,
		FixUpOffset:           fxOffset,
		FixUpCount:            fxCount,
		LogFileSequenceNumber: r.Uint64(8),
		SequenceNumber:        r.Uint16(16),
		HardLinkCount:         r.Uint16(18),
		FirstAttributeOffset:  firstAttributeOffset,
		Flags:                 RecordFlag(r.Uint16(22)),
		LogicalSize:           logicalSize,
		AllocatedSize:         allocatedSize,
		BaseRecordReference:   baseRef,
		NextAttributeId:       r.Uint16(40),
		RecordNumber:          selfRecordNumber,
	}, nil
}
