package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
)

// Hash computes the lowercase, separator-free hex digest of path: each
// BlockID is serialized as a little-endian int32 and fed to SHA-256 in
// order. An empty path hashes to the digest of zero bytes.
func Hash(path []cfg.BlockID) string {
	h := sha256.New()
	var buf [4]byte
	for _, b := range path {
		binary.LittleEndian.PutUint32(buf[:], uint32(b))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
