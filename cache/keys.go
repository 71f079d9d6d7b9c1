package cache

import (
	"github.com/cespare/xxhash"
)

// keySeparator cannot appear inside a placeholder name or template literal
// boundary, so joined sources never collide by concatenation.
const keySeparator = "\x00"

// Fingerprint hashes the ordered parts of a render source into a cache key.
func Fingerprint(parts ...string) uint64 {
	size := 0
	for _, p := range parts {
		size += len(p) + 1
	}

	buf := make([]byte, 0, size)
	for i, p := range parts {
		if i > 0 {
			buf = append(buf, keySeparator...)
		}
		buf = append(buf, p...)
	}
	return xxhash.Sum64(buf)
}
