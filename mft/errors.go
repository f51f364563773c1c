package mft

import "fmt"

// FixUpError is returned when the fixup array's stored signature does not match the bytes found at a sector
// boundary. Fatal for the whole entry: the buffer cannot be trusted to have correct sector-boundary bytes once any
// substitution fails verification.
type FixUpError struct {
	RecordNumber uint64
	Offset       int
	Msg          string
}

func (e *FixUpError) Error() string {
	return fmt.Sprintf("fixup error at entry %d, offset %d: %s", e.RecordNumber, e.Offset, e.Msg)
}

// HeaderSource identifies which structural header a HeaderError came from.
type HeaderSource int

const (
	HeaderSourceEntry HeaderSource = iota
	HeaderSourceAttribute
)

func (s HeaderSource) String() string {
	if s == HeaderSourceAttribute {
		return "attribute header"
	}
	return "entry header"
}

// HeaderError reports a structural invariant violation in an entry header or an attribute header (offsets/sizes
// outside their allowed bounds, unexpected signature, an always-resident type parsed as non-resident).
type HeaderError struct {
	Source       HeaderSource
	RecordNumber uint64
	Msg          string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%s error (entry %d): %s", e.Source, e.RecordNumber, e.Msg)
}

// ContentError reports a rejected attribute content decode (truncated data, invalid discriminant). Fatal for the
// attribute, never for the entry: the attribute walker skips past it using the attribute's own total length and
// keeps going.
type ContentError struct {
	AttributeType AttributeType
	RecordNumber  uint64
	Msg           string
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content error in %s attribute (entry %d): %s", e.AttributeType.Name(), e.RecordNumber, e.Msg)
}

// DataStreamError reports an illegal datastream merge: adding a non-DATA attribute, merging into a resident stream,
// or mixing resident and non-resident $DATA attributes in one stream.
type DataStreamError struct {
	Msg string
}

func (e *DataStreamError) Error() string {
	return "datastream error: " + e.Msg
}

// EntryError reports an entry-level invariant violation (buffer length disagreeing with allocated length, a path
// request against an entry with no FILE_NAME). Carries the raw entry bytes, when available, so callers can dump the
// offending record.
type EntryError struct {
	RecordNumber uint64
	Msg          string
	Raw          []byte
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d error: %s", e.RecordNumber, e.Msg)
}

// MFTError reports a top-level collection error: entry-size detection failure, iterator overshoot, or an invalid
// random-access argument.
type MFTError struct {
	Msg string
}

func (e *MFTError) Error() string {
	return "mft error: " + e.Msg
}

// Warning is a non-fatal condition surfaced alongside a successfully assembled LogicalEntry (a skipped attribute
// whose content failed to decode, or a self-record-number mismatch when Config.StrictSelfRecordNumber is false).
type Warning struct {
	RecordNumber uint64
	Msg          string
}

func (w Warning) String() string {
	return fmt.Sprintf("entry %d: %s", w.RecordNumber, w.Msg)
}
