package utils

import "hash/fnv"

// HashStringToUint64 is the stable hash behind cache file names and the
// mock assistant's deterministic output.
func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
