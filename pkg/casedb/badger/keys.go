package badger

import "fmt"

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so prefixed keys organize the record types
// a case carries. Object ids are assigned by the ingest tooling and are
// unique case-wide, so decimal ids in keys cannot collide across types
// thanks to the prefixes.
//
// Data Type          Prefix   Key Format        Value Encoding
// =================================================================
// Object Records     "o:"     o:<objID>         objectRecord (XDR)
// Parent Links       "p:"     p:<childObjID>    parent objID (8-byte BE)
// File Systems       "fs:"    fs:<fsObjID>      fsRecord (XDR)
// Data Sources       "ds:"    ds:<dsObjID>      dsRecord (XDR)
// Case Identity      "case:"  case:id           UUID string
//
// Records use XDR (RFC 4506) rather than JSON: the case format is shared
// with non-Go ingest tooling, and XDR gives a fixed, language-neutral byte
// layout with no field-name coupling. Parent links are bare 8-byte integers
// since they are looked up on every path resolution step.

func objectKey(objID int64) []byte {
	return fmt.Appendf(nil, "o:%d", objID)
}

func parentKey(objID int64) []byte {
	return fmt.Appendf(nil, "p:%d", objID)
}

func fsKey(fsObjID int64) []byte {
	return fmt.Appendf(nil, "fs:%d", fsObjID)
}

func dsKey(dsObjID int64) []byte {
	return fmt.Appendf(nil, "ds:%d", dsObjID)
}

var caseIDKey = []byte("case:id")
