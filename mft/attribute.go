package mft

import (
	"encoding/binary"
	"fmt"

	"github.com/dfirtools/gomft/binutil"
	"github.com/dfirtools/gomft/utf16"
)

// AttributeType identifies the kind of data an attribute carries. Use Name() for a
// human-readable ("$FILE_NAME"-style) representation.
type AttributeType uint32

// Known attribute types. Other values occur in the wild (third-party and future Windows
// versions add their own); an unrecognised type is still walked and its raw resident bytes kept,
// just with no typed Content decoded for it.
const (
	AttributeTypeStandardInformation AttributeType = 0x10       // $STANDARD_INFORMATION; always resident
	AttributeTypeAttributeList       AttributeType = 0x20       // $ATTRIBUTE_LIST; mixed residency
	AttributeTypeFileName            AttributeType = 0x30       // $FILE_NAME; always resident
	AttributeTypeObjectId            AttributeType = 0x40       // $OBJECT_ID; always resident
	AttributeTypeSecurityDescriptor  AttributeType = 0x50       // $SECURITY_DESCRIPTOR; usually resident
	AttributeTypeVolumeName          AttributeType = 0x60       // $VOLUME_NAME; always resident
	AttributeTypeVolumeInformation   AttributeType = 0x70       // $VOLUME_INFORMATION; always resident
	AttributeTypeData                AttributeType = 0x80       // $DATA; mixed residency
	AttributeTypeIndexRoot           AttributeType = 0x90       // $INDEX_ROOT; always resident
	AttributeTypeIndexAllocation     AttributeType = 0xa0       // $INDEX_ALLOCATION; never resident
	AttributeTypeBitmap              AttributeType = 0xb0       // $BITMAP; nearly always resident
	AttributeTypeReparsePoint        AttributeType = 0xc0       // $REPARSE_POINT; usually resident
	AttributeTypeEAInformation       AttributeType = 0xd0       // $EA_INFORMATION; always resident
	AttributeTypeEA                  AttributeType = 0xe0       // $EA; nearly always resident
	AttributeTypePropertySet         AttributeType = 0xf0       // $PROPERTY_SET; obsolete
	AttributeTypeLoggedUtilityStream AttributeType = 0x100      // $LOGGED_UTILITY_STREAM; mixed residency
	AttributeTypeTerminator          AttributeType = 0xFFFFFFFF // marks the end of an attribute list; never returned as an Attribute
)

// Name returns a human-readable name for at, e.g. "$FILE_NAME". Unrecognised types return
// "unknown".
func (at AttributeType) Name() string {
	switch at {
	case AttributeTypeStandardInformation:
		return "$STANDARD_INFORMATION"
	case AttributeTypeAttributeList:
		return "$ATTRIBUTE_LIST"
	case AttributeTypeFileName:
		return "$FILE_NAME"
	case AttributeTypeObjectId:
		return "$OBJECT_ID"
	case AttributeTypeSecurityDescriptor:
		return "$SECURITY_DESCRIPTOR"
	case AttributeTypeVolumeName:
		return "$VOLUME_NAME"
	case AttributeTypeVolumeInformation:
		return "$VOLUME_INFORMATION"
	case AttributeTypeData:
		return "$DATA"
	case AttributeTypeIndexRoot:
		return "$INDEX_ROOT"
	case AttributeTypeIndexAllocation:
		return "$INDEX_ALLOCATION"
	case AttributeTypeBitmap:
		return "$BITMAP"
	case AttributeTypeReparsePoint:
		return "$REPARSE_POINT"
	case AttributeTypeEAInformation:
		return "$EA_INFORMATION"
	case AttributeTypeEA:
		return "$EA"
	case AttributeTypePropertySet:
		return "$PROPERTY_SET"
	case AttributeTypeLoggedUtilityStream:
		return "$LOGGED_UTILITY_STREAM"
	}
	return "unknown"
}

// mustBeResident reports whether NTFS requires attributes of type t to always be resident. A
// non-resident attribute of one of these types is a structural invariant violation.
func mustBeResident(t AttributeType) bool {
	switch t {
	case AttributeTypeStandardInformation, AttributeTypeFileName, AttributeTypeIndexRoot,
		AttributeTypeObjectId, AttributeTypeVolumeName, AttributeTypeVolumeInformation,
		AttributeTypeEAInformation:
		return true
	}
	return false
}

// AttributeFlags is a bit mask of an attribute's compression/encryption/sparse state.
type AttributeFlags uint16

const (
	AttributeFlagsCompressed AttributeFlags = 0x0001
	AttributeFlagsEncrypted  AttributeFlags = 0x4000
	AttributeFlagsSparse     AttributeFlags = 0x8000
)

// Is reports whether f's bit mask contains c.
func (f AttributeFlags) Is(c AttributeFlags) bool {
	return f&c == c
}

// Attribute is a single parsed attribute header plus its resident data (if resident) or its
// decoded data run list (if non-resident and Config.LoadDataRuns is set). Content holds the
// type-specific decoded value (e.g. a FileName) when the attribute is resident, its type is
// recognised, and decoding is enabled; it is nil otherwise.
type Attribute struct {
	Type            AttributeType
	Resident        bool
	Name            string
	Flags           AttributeFlags
	AttributeId     uint16
	StartVCN        uint64
	EndVCN          uint64
	AllocatedSize   uint64
	ActualSize      uint64
	InitializedSize uint64
	DataRuns        []DataRun
	Data            []byte
	Content         interface{}
}

// DataRun is a single run of an attribute's non-resident data: LengthInClusters contiguous
// clusters starting at OffsetCluster, relative to the volume's first cluster. Sparse runs carry
// no real cluster allocation; OffsetCluster is meaningless for them and should not be used to
// advance the previous-offset accumulator of the run list (handled by parseDataRuns).
type DataRun struct {
	OffsetCluster    int64
	LengthInClusters uint64
	Sparse           bool
}

// parseAttributeHeader parses a single attribute, header through resident data or non-resident
// run list, from b (already sliced to exactly this attribute's total length by the caller).
// recordNumber is used only to annotate returned errors.
func parseAttributeHeader(b []byte, recordNumber uint64, cfg *Config) (Attribute, error) {
	if len(b) < 16 {
		return Attribute{}, &HeaderError{Source: HeaderSourceAttribute, RecordNumber: recordNumber, Msg: fmt.Sprintf("attribute header should be at least 16 bytes but is %d", len(b))}
	}

	r := binutil.NewLittleEndianReader(b)
	attrType := AttributeType(r.Uint32(0x00))
	nonResident := r.Byte(0x08) != 0x00
	nameLength := int(r.Byte(0x09))
	nameOffset := int(r.Uint16(0x0A))
	flags := AttributeFlags(r.Uint16(0x0C))
	attrID := r.Uint16(0x0E)

	if mustBeResident(attrType) && nonResident {
		return Attribute{}, &HeaderError{Source: HeaderSourceAttribute, RecordNumber: recordNumber, Msg: fmt.Sprintf("%s must be resident but is non-resident", attrType.Name())}
	}

	var name string
	if nameLength > 0 {
		if !r.HasLength(nameOffset, nameLength*2) {
			return Attribute{}, &HeaderError{Source: HeaderSourceAttribute, RecordNumber: recordNumber, Msg: "attribute name exceeds attribute bounds"}
		}
		decoded, err := utf16.DecodeString(r.Read(nameOffset, nameLength*2), binary.LittleEndian)
		if err != nil {
			return Attribute{}, &HeaderError{Source: HeaderSourceAttribute, RecordNumber: recordNumber, Msg: fmt.Sprintf("unable to decode attribute name: %v", err)}
		}
		name = decoded
	}

	attr := Attribute{
		Type:        attrType,
		Resident:    !nonResident,
		Name:        name,
		Flags:       flags,
		AttributeId: attrID,
	}

	if !nonResident {
		if !r.HasLength(0x10, 8) {
			return Attribute{}, &HeaderError{Source: HeaderSourceAttribute, RecordNumber: recordNumber, Msg: "resident attribute header truncated"}
		}
		contentLength := int(r.Uint32(0x10))
		contentOffset := int(r.Uint16(0x14))
		if !r.HasLength(contentOffset, contentLength) {
			return Attribute{}, &HeaderError{Source: HeaderSourceAttribute, RecordNumber: recordNumber, Msg: fmt.Sprintf("resident content (offset %d, length %d) exceeds attribute bounds (%d)", contentOffset, contentLength, len(b))}
		}
		attr.Data = binutil.Duplicate(r.Read(contentOffset, contentLength))
		attr.ActualSize = uint64(contentLength)
		attr.AllocatedSize = uint64(contentLength)
		return attr, nil
	}

	if !r.HasLength(0x10, 48) {
		return Attribute{}, &HeaderError{Source: HeaderSourceAttribute, RecordNumber: recordNumber, Msg: "non-resident attribute header truncated"}
	}
	attr.StartVCN = r.Uint64(0x10)
	attr.EndVCN = r.Uint64(0x18)
	runListOffset := int(r.Uint16(0x20))
	attr.AllocatedSize = r.Uint64(0x28)
	attr.ActualSize = r.Uint64(0x30)
	attr.InitializedSize = r.Uint64(0x38)

	if cfg.LoadDataRuns {
		if runListOffset < 0 || runListOffset > len(b) {
			return Attribute{}, &HeaderError{Source: HeaderSourceAttribute, RecordNumber: recordNumber, Msg: fmt.Sprintf("run list offset %d exceeds attribute bounds (%d)", runListOffset, len(b))}
		}
		runs, err := parseDataRuns(r.ReadFrom(runListOffset), attrType, recordNumber)
		if err != nil {
			return Attribute{}, err
		}
		attr.DataRuns = runs
	}

	return attr, nil
}

// parseDataRuns decodes a non-resident attribute's run list: a sequence of (header byte,
// length-in-clusters, offset-in-clusters) triples terminated by a zero header byte. A run's
// length is always an unsigned variable-width little-endian integer; its offset (absent for
// sparse runs) is signed and relative to the previous non-sparse run's absolute offset.
func parseDataRuns(b []byte, attrType AttributeType, recordNumber uint64) ([]DataRun, error) {
	var runs []DataRun
	previousOffset := int64(0)

	for len(b) > 0 {
		header := b[0]
		if header == 0 {
			break
		}

		lengthLen := int(header & 0x0F)
		offsetLen := int(header >> 4)
		needed := 1 + lengthLen + offsetLen
		if needed > len(b) {
			return nil, &ContentError{AttributeType: attrType, RecordNumber: recordNumber, Msg: "truncated data run"}
		}

		lengthBytes := b[1 : 1+lengthLen]
		length := binutil.PadToUint64(lengthBytes, binary.LittleEndian, false)

		run := DataRun{LengthInClusters: length}
		if offsetLen == 0 {
			run.Sparse = true
		} else {
			offsetBytes := b[1+lengthLen : needed]
			delta := int64(binutil.PadToUint64(offsetBytes, binary.LittleEndian, true))
			absolute := previousOffset + delta
			run.OffsetCluster = absolute
			previousOffset = absolute
		}

		runs = append(runs, run)
		b = b[needed:]
	}

	return runs, nil
}
