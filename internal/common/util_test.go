package common

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// MakeRandHexString backs refresh-token generation, so the length contract
// matters: size is the number of random bytes, the string is twice that.
func TestMakeRandHexString(t *testing.T) {
	for _, size := range []int{0, 1, 16, 32} {
		s, err := MakeRandHexString(size)
		if err != nil {
			t.Fatalf("size %d: unexpected error: %v", size, err)
		}
		if len(s) != size*2 {
			t.Fatalf("size %d: expected hex length %d, got %d", size, size*2, len(s))
		}
		if _, err := hex.DecodeString(s); err != nil {
			t.Fatalf("size %d: string is not valid hex: %v", size, err)
		}
	}
}

func TestMakeRandHexString_EntropyHint(t *testing.T) {
	a, err := MakeRandHexString(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := MakeRandHexString(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Logf("warning: two MakeRandHexString(32) results are identical; extremely unlikely")
	}
}

// The CLI wipes password buffers after use; a partial wipe would leave
// credentials in memory.
func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte("password")
	WipeByteArray(buf)
	if !bytes.Equal(buf, make([]byte, len(buf))) {
		t.Fatalf("buffer not zeroed: %v", buf)
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestGenerateRandByteArray(t *testing.T) {
	const n = 24
	buf := GenerateRandByteArray(n)
	if len(buf) != n {
		t.Fatalf("expected length %d, got %d", n, len(buf))
	}

	if other := GenerateRandByteArray(n); bytes.Equal(buf, other) {
		t.Logf("warning: two GenerateRandByteArray(%d) results are identical; extremely unlikely", n)
	}
}
