// Copyright © 2024 The ELPS authors

package syntax

import (
	"encoding/binary"
	"hash/fnv"
)

func hashStrings(k Kind, parts ...string) uint64 {
	h := fnv.New64a()
	h.Write([]byte{byte(k)}) //nolint:errcheck // hash.Hash never fails
	for _, p := range parts {
		h.Write([]byte(p)) //nolint:errcheck // hash.Hash never fails
		h.Write([]byte{0}) //nolint:errcheck // hash.Hash never fails
	}
	return h.Sum64()
}

func hashInt(i int64) uint64 {
	var buf [9]byte
	buf[0] = byte(KLiteral)
	binary.LittleEndian.PutUint64(buf[1:], uint64(i))
	h := fnv.New64a()
	h.Write(buf[:]) //nolint:errcheck // hash.Hash never fails
	return h.Sum64()
}

// mixOrdered folds element hashes so that order matters.
func mixOrdered(seed uint64, hashes ...uint64) uint64 {
	h := seed
	for _, x := range hashes {
		h = h*1099511628211 ^ x
	}
	return h
}
