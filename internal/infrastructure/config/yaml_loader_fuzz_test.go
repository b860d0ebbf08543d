package config

import (
	"bytes"
	"strings"
	"testing"
)

// FuzzDecodeDocument fuzzes profile and topfile parsing for panics on
// malformed input.
func FuzzDecodeDocument(f *testing.F) {
	seeds := []string{
		"stat:\n  - tag: CIS-1\n    path: /etc/passwd\n",
		"nova:\n  '*':\n    - cis\n",
		strings.Repeat("nested:\n  ", 1000) + "value: 1",
		"stat:\n" + strings.Repeat("  - tag: t\n", 10000),
		"control:\n  - \xff\xfe",
		"a: &anchor\n  b: 1\nc: *anchor",
		"key: test\x00null",
		"",
		"   \n\t  \n",
		"nova:\n  x: [\n",
		strings.Repeat("x", 100000) + ": value",
	}

	for _, seed := range seeds {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("PANIC on input (len=%d): %v", len(data), r)
			}
		}()

		_, _ = DecodeDocument(bytes.NewReader(data))
		_, _ = ParseTopfile("top.nova", data)
	})
}
