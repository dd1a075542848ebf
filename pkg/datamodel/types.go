// Package datamodel models file-system objects recorded in a forensic case
// and mediates access to their bytes and low-level metadata through an
// analysis engine (see pkg/engine).
//
// The central type is FsObject: one file or directory previously discovered
// inside a case, carrying its recorded attributes plus a lazily-opened engine
// handle. Objects are typically shared between goroutines through a case-wide
// registry, so every operation on an FsObject is safe for concurrent use.
package datamodel

// MetaAddrNone is the "no metadata record" sentinel for an object's meta
// address. Objects carrying it (carved files, virtual entries) have no
// on-disk metadata structure the engine could describe.
const MetaAddrNone uint64 = 0

// TimeStamps holds the four classic file-system timestamps as Unix epoch
// seconds. A zero value means the file system did not record that timestamp.
type TimeStamps struct {
	// Created is the creation (birth) time.
	Created int64

	// Modified is the content modification time.
	Modified int64

	// Changed is the metadata change time.
	Changed int64

	// Accessed is the last access time.
	Accessed int64
}

// KnownStatus is the result of a hash database lookup for an object.
type KnownStatus uint32

const (
	// KnownUnknown means the object has not been looked up, or the lookup
	// found nothing.
	KnownUnknown KnownStatus = iota

	// KnownGood means the hash matched a known-good (NSRL-style) set.
	KnownGood

	// KnownBad means the hash matched a notable/known-bad set.
	KnownBad
)

func (k KnownStatus) String() string {
	switch k {
	case KnownGood:
		return "known"
	case KnownBad:
		return "known-bad"
	default:
		return "unknown"
	}
}

// CollectedStatus records whether the object's content bytes were collected
// into the case's evidence store.
type CollectedStatus uint32

const (
	// CollectedUnknown means collection status was never recorded.
	CollectedUnknown CollectedStatus = iota

	// CollectedYes means the content was extracted and stored.
	CollectedYes

	// CollectedNo means collection was attempted and skipped or failed.
	CollectedNo
)

// NameType is the object type as reported by the file system's name
// structure (directory entry).
type NameType uint32

const (
	NameTypeUndef NameType = iota
	NameTypeFile
	NameTypeDir
	NameTypeLink
	NameTypeVirtual
)

// MetaType is the object type as reported by the file system's metadata
// structure. It can disagree with NameType on damaged or deleted entries.
type MetaType uint32

const (
	MetaTypeUndef MetaType = iota
	MetaTypeFile
	MetaTypeDir
	MetaTypeLink
	MetaTypeVirtual
)

// NameFlags is the allocation status from the name structure.
type NameFlags uint32

const (
	NameFlagAllocated NameFlags = 1 << iota
	NameFlagUnallocated
)

// MetaFlags is the allocation status from the metadata structure.
type MetaFlags uint32

const (
	MetaFlagAllocated MetaFlags = 1 << iota
	MetaFlagUnallocated
	MetaFlagUsed
	MetaFlagUnused
	MetaFlagCompressed
	MetaFlagOrphan
)

// FSType identifies the file system type of a FileSystem record.
type FSType uint32

const (
	FSTypeUnknown FSType = iota
	FSTypeNTFS
	FSTypeFAT
	FSTypeExt
	FSTypeHFS
	FSTypeAPFS
	FSTypeISO9660
)

func (t FSType) String() string {
	switch t {
	case FSTypeNTFS:
		return "ntfs"
	case FSTypeFAT:
		return "fat"
	case FSTypeExt:
		return "ext"
	case FSTypeHFS:
		return "hfs"
	case FSTypeAPFS:
		return "apfs"
	case FSTypeISO9660:
		return "iso9660"
	default:
		return "unknown"
	}
}
