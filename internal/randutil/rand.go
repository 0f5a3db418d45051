// Package randutil derives generator keys from user-facing integer seeds.
package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// Key returns the generator key for seed. Nearby seeds map to unrelated
// keys, so seeds 1, 2, 3 do not produce keys that differ in a single bit.
func Key(seed int64) uint64 {
	return mix(uint64(seed) + goldenRatio64)
}

// Keys derives n distinct keys from one seed, one per independent stream.
func Keys(seed int64, n int) []uint64 {
	keys := make([]uint64, n)
	x := uint64(seed)
	for i := range keys {
		x += goldenRatio64
		keys[i] = mix(x)
	}
	return keys
}

// Seed returns a non-deterministic seed for callers that did not supply one.
func Seed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		panic("randutil: crypto/rand unavailable: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
