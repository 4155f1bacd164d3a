package keys_test

import (
	"bytes"
	"testing"

	"github.com/jrife/warden/utils/keys"
)

func TestUint64ToKeyOrdering(t *testing.T) {
	values := []uint64{0, 1, 2, 255, 256, 1 << 32, 1<<64 - 1}

	for i := 1; i < len(values); i++ {
		a := keys.Uint64ToKey(values[i-1])
		b := keys.Uint64ToKey(values[i])

		if bytes.Compare(a[:], b[:]) >= 0 {
			t.Fatalf("expected key(%d) < key(%d)", values[i-1], values[i])
		}
	}
}

func TestKeyToUint64(t *testing.T) {
	testCases := map[string]struct {
		key    []byte
		result uint64
		ok     bool
	}{
		"round-trip": {
			key:    func() []byte { k := keys.Uint64ToKey(42); return k[:] }(),
			result: 42,
			ok:     true,
		},
		"short": {
			key: []byte{1, 2, 3},
		},
		"nil": {
			key: nil,
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			result, ok := keys.KeyToUint64(testCase.key)

			if ok != testCase.ok || result != testCase.result {
				t.Fatalf("expected (%d, %v), got (%d, %v)", testCase.result, testCase.ok, result, ok)
			}
		})
	}
}
