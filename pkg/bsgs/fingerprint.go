package bsgs

import "github.com/cespare/xxhash/v2"

// FingerprintLen is the width of a baby-table key in bytes.
const FingerprintLen = 8

// Fingerprint is the lossy baby-table key: the first 8 characters of the
// 16-hex-digit XXH64 (seed 0) of a compressed public key's 66-char hex form,
// i.e. the high 32 bits of the hash. Narrow on purpose: it keeps shard
// records at 12 bytes, and collisions are resolved by re-verifying every
// candidate against the full target key.
type Fingerprint [FingerprintLen]byte

const hexDigits = "0123456789abcdef"

// FingerprintOf hashes the 66-character lowercase hex form of a compressed
// public key. The same textual form is hashed by the table builder and the
// giant-step search, so fingerprints are stable across runs.
func FingerprintOf(cpubHex string) Fingerprint {
	hi := uint32(xxhash.Sum64String(cpubHex) >> 32)

	var fp Fingerprint
	for i := FingerprintLen - 1; i >= 0; i-- {
		fp[i] = hexDigits[hi&0xf]
		hi >>= 4
	}
	return fp
}

// String returns the fingerprint's hex characters.
func (f Fingerprint) String() string {
	return string(f[:])
}
