package modcut

import (
	"strings"
	"testing"
)

func TestDigestDeterministic(t *testing.T) {
	const payload = "PK\x03\x04 fake jar bytes"
	d1, err := NewDigest(strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	d2 := DigestBytes([]byte(payload))
	if d1 != d2 {
		t.Errorf("NewDigest and DigestBytes disagree: %s != %s", d1, d2)
	}
	if d1.IsZero() {
		t.Error("non-empty payload produced a zero digest")
	}
}

func TestDigestZero(t *testing.T) {
	var d Digest
	if !d.IsZero() {
		t.Error("zero value Digest.IsZero() = false, want true")
	}
}

func TestDigestStringFormat(t *testing.T) {
	d := DigestBytes([]byte("x"))
	if !strings.HasPrefix(d.String(), "sha3-256:") {
		t.Errorf("String() = %q, want sha3-256: prefix", d.String())
	}
}
