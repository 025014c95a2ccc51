package modcut

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/sha3"
)

// Digest is a content hash of an archive's bytes.
//
// It's the key type of the analysis cache (package cache): the CLI keys a run
// by the Digest of every archive's Digest, so a result can be addressed
// independently of the archives' paths on disk. The SBOM encoder does not
// use it.
// sha3-256 is used rather than sha256 so this type doesn't collide,
// conceptually, with any checksum an archive's own manifest or signature
// might already carry.
type Digest struct {
	checksum [sha3.Size256]byte
}

// NewDigest hashes r fully and returns the resulting Digest.
func NewDigest(r io.Reader) (Digest, error) {
	h := sha3.New256()
	if _, err := io.Copy(h, r); err != nil {
		return Digest{}, fmt.Errorf("modcut: digest: %w", err)
	}
	var d Digest
	h.Sum(d.checksum[:0])
	return d, nil
}

// DigestBytes hashes b and returns the resulting Digest.
func DigestBytes(b []byte) Digest {
	var d Digest
	h := sha3.Sum256(b)
	copy(d.checksum[:], h[:])
	return d
}

// Hash returns a fresh instance of the hash algorithm used for this Digest.
func (Digest) Hash() hash.Hash { return sha3.New256() }

// Checksum returns the raw checksum bytes.
func (d Digest) Checksum() []byte { return d.checksum[:] }

// String implements fmt.Stringer, rendering as "sha3-256:<hex>".
func (d Digest) String() string {
	return "sha3-256:" + hex.EncodeToString(d.checksum[:])
}

// IsZero reports whether d is the zero Digest.
func (d Digest) IsZero() bool {
	return bytes.Equal(d.checksum[:], make([]byte, len(d.checksum)))
}
