// Package fingerprint hashes a reduced path to its hex digest: SHA-256
// over the path's BlockIDs, each encoded as its little-endian four-byte
// representation and concatenated in order.
package fingerprint
