package arbor

import (
	"bytes"
	"crypto/md5"
	"encoding/gob"
)

// Fingerprint is a stable digest of a connection table, intended for
// verifying that construction produced an identical table on every domain
// that was handed equivalent inputs (construction is deterministic; this
// makes that property checkable). The digest is the MD5 of the table's
// gob encoding.
type Fingerprint [md5.Size]byte

// FingerprintConnections computes the Fingerprint of a connection table.
// The table must already be in its final, sorted-by-domain-slice form;
// two equal tables produce equal fingerprints regardless of how they were
// built.
func FingerprintConnections(connections []Connection, connectionPart []int) Fingerprint {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(connections); err != nil {
		panic(err)
	}
	if err := enc.Encode(connectionPart); err != nil {
		panic(err)
	}
	return md5.Sum(buf.Bytes())
}
