// Package exchange converts codebook data to and from its external formats:
// the persisted state blob, project JSON files and CSV reports.
//
// Domain types carry no serialization tags. Every format is described by the
// unexported wire structs in this package, with timestamps written as
// RFC 3339 UTC strings and parsed back explicitly on read.
package exchange
