package mft

import (
	"fmt"

	"github.com/dfirtools/gomft/binutil"
)

// LogicalEntry is the fully assembled view of one base MFT entry: its header, every attribute
// gathered from the base entry and all of its extensions (grouped by type), the normalized
// datastreams built from its $DATA attributes, and any non-fatal Warnings raised while assembling
// it.
type LogicalEntry struct {
	Header      EntryHeader
	Attributes  map[AttributeType][]Attribute
	Datastreams []*Datastream
	Warnings    []Warning
}

// FindAttributes returns every attribute of type t on e, or nil if there are none.
func (e *LogicalEntry) FindAttributes(t AttributeType) []Attribute {
	return e.Attributes[t]
}

// MainFileName selects e's "primary" FILE_NAME per the standard NTFS convention: first, the
// FILE_NAME attribute with the smallest attribute ID; then, among every FILE_NAME sharing that
// attribute's parent file reference, the one with the smallest namespace value (POSIX, then
// Win32, then DOS, then Win32+DOS). Returns ok=false when e has no FILE_NAME attribute at all.
func (e *LogicalEntry) MainFileName() (fileName FileName, attribute Attribute, ok bool) {
	fnAttrs := e.Attributes[AttributeTypeFileName]
	if len(fnAttrs) == 0 {
		return FileName{}, Attribute{}, false
	}

	best := fnAttrs[0]
	bestFN, _ := best.Content.(FileName)
	for _, a := range fnAttrs[1:] {
		if a.AttributeId < best.AttributeId {
			best = a
			bestFN, _ = a.Content.(FileName)
		}
	}

	chosen, chosenFN := best, bestFN
	for _, a := range fnAttrs {
		fn, isFileName := a.Content.(FileName)
		if !isFileName || fn.ParentFileReference != bestFN.ParentFileReference {
			continue
		}
		if fn.Namespace < chosenFN.Namespace {
			chosen, chosenFN = a, fn
		}
	}
	return chosenFN, chosen, true
}

// UniqueNames groups e's FILE_NAME attributes by parent directory and, within each group, keeps
// the one with the smallest namespace value - i.e. it collapses the Win32+DOS pair NTFS writes
// for a short name down to a single representative name per hard link.
func (e *LogicalEntry) UniqueNames() []FileName {
	fnAttrs := e.Attributes[AttributeTypeFileName]
	byParent := map[FileReference]*FileName{}
	var order []FileReference

	for _, a := range fnAttrs {
		fn, ok := a.Content.(FileName)
		if !ok {
			continue
		}
		cur, exists := byParent[fn.ParentFileReference]
		if !exists {
			order = append(order, fn.ParentFileReference)
			copied := fn
			byParent[fn.ParentFileReference] = &copied
			continue
		}
		if fn.Namespace < cur.Namespace {
			*cur = fn
		}
	}

	out := make([]FileName, 0, len(order))
	for _, ref := range order {
		out = append(out, *byParent[ref])
	}
	return out
}

// walkAttributes parses every attribute in b (an entry's attribute area, from the first
// attribute offset up to the terminator or the end of the buffer), dispatching $DATA attributes
// to the datastream normalizer (C8) and every other recognised, enabled, resident attribute to
// its content decoder (C4). A malformed attribute whose own total length can still be determined
// is skipped with a Warning; the walk aborts outright when the stream is too short to read a
// common header or an attribute's total length is below 16 or runs past the end of the stream.
func walkAttributes(b []byte, recordNumber uint64, cfg *Config) (map[AttributeType][]Attribute, []*Datastream, []Warning, error) {
	attrs := map[AttributeType][]Attribute{}
	var streams []*Datastream
	var warnings []Warning

	for len(b) > 0 {
		if len(b) < 8 {
			return attrs, streams, warnings, &HeaderError{Source: HeaderSourceAttribute, RecordNumber: recordNumber, Msg: "attribute stream truncated before common header"}
		}

		r := binutil.NewLittleEndianReader(b)
		if AttributeType(r.Uint32(0)) == AttributeTypeTerminator {
			break
		}

		totalLength := int(r.Uint32(4))
		if totalLength < 16 || totalLength > len(b) {
			return attrs, streams, warnings, &HeaderError{Source: HeaderSourceAttribute, RecordNumber: recordNumber, Msg: fmt.Sprintf("invalid attribute total length %d", totalLength)}
		}

		attrBytes := b[:totalLength]
		b = b[totalLength:]

		attr, err := parseAttributeHeader(attrBytes, recordNumber, cfg)
		if err != nil {
			warnings = append(warnings, Warning{RecordNumber: recordNumber, Msg: err.Error()})
			continue
		}

		if attr.Type == AttributeTypeData {
			if err := addDataAttribute(&streams, attr); err != nil {
				warnings = append(warnings, Warning{RecordNumber: recordNumber, Msg: err.Error()})
			}
			continue
		}

		if attr.Resident {
			content, err := decodeContent(attr.Type, attr.Data, cfg)
			if err != nil {
				warnings = append(warnings, Warning{RecordNumber: recordNumber, Msg: fmt.Sprintf("%s: %v", attr.Type.Name(), err)})
			} else {
				attr.Content = content
			}
		}

		attrs[attr.Type] = append(attrs[attr.Type], attr)
	}

	return attrs, streams, warnings, nil
}
