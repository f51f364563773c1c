package mft

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/dfirtools/gomft/binutil"
)

// SID is a Windows security identifier in its binary form, decoded into its component fields.
// String renders it in the familiar "S-1-5-21-..." form.
type SID struct {
	Revision            byte
	IdentifierAuthority uint64 // 48-bit value
	SubAuthorities      []uint32
}

// String renders s in standard "S-revision-authority-sub...-sub" notation.
func (s SID) String() string {
	var sb strings.Builder
	sb.WriteString("S-")
	sb.WriteString(strconv.Itoa(int(s.Revision)))
	sb.WriteByte('-')
	sb.WriteString(strconv.FormatUint(s.IdentifierAuthority, 10))
	for _, sub := range s.SubAuthorities {
		sb.WriteByte('-')
		sb.WriteString(strconv.FormatUint(uint64(sub), 10))
	}
	return sb.String()
}

// decodeSID decodes a binary SID (1-byte revision, 1-byte sub-authority count, 6-byte big-endian
// identifier authority, then count little-endian 4-byte sub-authorities) from the start of b.
func decodeSID(b []byte) (SID, error) {
	if len(b) < 8 {
		return SID{}, fmt.Errorf("SID data should be at least 8 bytes but is %d", len(b))
	}
	count := int(b[1])
	needed := 8 + count*4
	if len(b) < needed {
		return SID{}, fmt.Errorf("SID with %d sub-authorities needs %d bytes but got %d", count, needed, len(b))
	}

	var authority uint64
	for i := 0; i < 6; i++ {
		authority = authority<<8 | uint64(b[2+i])
	}

	subs := make([]uint32, count)
	for i := 0; i < count; i++ {
		subs[i] = binary.LittleEndian.Uint32(b[8+i*4:])
	}

	return SID{Revision: b[0], IdentifierAuthority: authority, SubAuthorities: subs}, nil
}

// ACLHeader is the fixed-layout header preceding an ACL's access control entries.
type ACLHeader struct {
	Revision byte
	Size     uint16
	ACECount uint16
}

// ACL is a Windows access control list. The individual access control entries are kept as raw
// bytes rather than decoded one by one: their mask/type/flags layout varies by ACE type and isn't
// needed for MFT-level forensic triage.
type ACL struct {
	Header ACLHeader
	RawACEs []byte
}

func decodeACL(b []byte) (ACL, error) {
	if len(b) < 8 {
		return ACL{}, fmt.Errorf("ACL data should be at least 8 bytes but is %d", len(b))
	}
	r := binutil.NewLittleEndianReader(b)
	header := ACLHeader{Revision: r.Byte(0), Size: r.Uint16(2), ACECount: r.Uint16(4)}
	end := int(header.Size)
	if end > len(b) {
		end = len(b)
	}
	if end < 8 {
		end = 8
	}
	return ACL{Header: header, RawACEs: binutil.Duplicate(b[8:end])}, nil
}

// SecurityDescriptor ($SECURITY_DESCRIPTOR) is a self-relative Windows security descriptor:
// owner and group SIDs plus optional system (SACL) and discretionary (DACL) access control
// lists. A nil Owner/Group/SACL/DACL means that field's offset in the descriptor was zero (not
// present), which is legal.
type SecurityDescriptor struct {
	Revision byte
	Control  uint16
	Owner    *SID
	Group    *SID
	SACL     *ACL
	DACL     *ACL
}

// ParseSecurityDescriptor decodes a $SECURITY_DESCRIPTOR attribute's resident content.
func ParseSecurityDescriptor(b []byte) (SecurityDescriptor, error) {
	if len(b) < 20 {
		return SecurityDescriptor{}, fmt.Errorf("expected at least 20 bytes but got %d", len(b))
	}

	r := binutil.NewLittleEndianReader(b)
	sd := SecurityDescriptor{Revision: r.Byte(0), Control: r.Uint16(2)}

	ownerOffset := int(r.Uint32(4))
	groupOffset := int(r.Uint32(8))
	saclOffset := int(r.Uint32(12))
	daclOffset := int(r.Uint32(16))

	if ownerOffset > 0 && ownerOffset < len(b) {
		sid, err := decodeSID(b[ownerOffset:])
		if err != nil {
			return SecurityDescriptor{}, fmt.Errorf("unable to decode owner SID: %w", err)
		}
		sd.Owner = &sid
	}
	if groupOffset > 0 && groupOffset < len(b) {
		sid, err := decodeSID(b[groupOffset:])
		if err != nil {
			return SecurityDescriptor{}, fmt.Errorf("unable to decode group SID: %w", err)
		}
		sd.Group = &sid
	}
	if saclOffset > 0 && saclOffset < len(b) {
		acl, err := decodeACL(b[saclOffset:])
		if err != nil {
			return SecurityDescriptor{}, fmt.Errorf("unable to decode SACL: %w", err)
		}
		sd.SACL = &acl
	}
	if daclOffset > 0 && daclOffset < len(b) {
		acl, err := decodeACL(b[daclOffset:])
		if err != nil {
			return SecurityDescriptor{}, fmt.Errorf("unable to decode DACL: %w", err)
		}
		sd.DACL = &acl
	}

	return sd, nil
}
