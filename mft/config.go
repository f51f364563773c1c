package mft

// Config controls how an MFT parses and validates entries. The zero value is usable but
// disables fixup application, the initial stub scan and data run decoding (it keeps the
// default-sized cache); use DefaultConfig for the settings a typical caller wants.
type Config struct {
	// EntrySize is the size in bytes of a single MFT entry. Zero means "detect it from the
	// source" via the signature-probing algorithm in mft.go.
	EntrySize int

	// ApplyFixupArray controls whether the fixup (update sequence) array is applied before an
	// entry's header and attributes are parsed. Disabling this is only useful against sources
	// that have already had fixups applied (e.g. a forensic tool's own normalized export).
	ApplyFixupArray bool

	// IgnoreSignatureCheck skips the "FILE"/"BAAD" signature check on the entry header,
	// accepting any 4 bytes. Useful when scanning unallocated space for carved entries whose
	// signature bytes may have been partially overwritten.
	IgnoreSignatureCheck bool

	// CreateInitialInformation runs the stub scan (C6) at construction time, which is required
	// for Iterate, and for Get to recognize and reject extension record numbers. Disabling this
	// makes New cheaper but restricts the MFT to raw per-record access.
	CreateInitialInformation bool

	// LoadDataRuns controls whether non-resident attributes have their data run list decoded.
	// Disabling this is cheaper when only resident metadata (names, timestamps) is needed.
	LoadDataRuns bool

	// EnabledAttributeTypes controls which attribute types get their content decoded. A nil map
	// means all recognised types are decoded. An attribute type absent from a non-nil map is
	// still decoded (only explicit false entries are honored) - set it explicitly to false to
	// skip decoding a type's content while still recording its presence and raw bytes.
	EnabledAttributeTypes map[AttributeType]bool

	// StrictSelfRecordNumber controls how a mismatch between an entry's on-disk self record
	// number and its actual slot is handled: true rejects the entry with an EntryError, false
	// (the default) keeps the entry and records a Warning.
	StrictSelfRecordNumber bool

	// CacheSize is the number of assembled LogicalEntry values to keep in the LRU cache fronting
	// Get. Zero means defaultCacheSize; a negative value disables caching entirely.
	CacheSize int
}

// DefaultConfig returns the Config a typical caller wants: fixups applied, signatures checked,
// stub scan run, data runs decoded, every recognised attribute type decoded, lenient about
// self-record-number mismatches, default-sized cache.
func DefaultConfig() Config {
	return Config{
		ApplyFixupArray:          true,
		CreateInitialInformation: true,
		LoadDataRuns:             true,
		StrictSelfRecordNumber:   false,
		CacheSize:                defaultCacheSize,
	}
}

func (c *Config) attributeEnabled(t AttributeType) bool {
	if c.EnabledAttributeTypes == nil {
		return true
	}
	enabled, explicit := c.EnabledAttributeTypes[t]
	if !explicit {
		return true
	}
	return enabled
}
