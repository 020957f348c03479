package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// HashBytes returns the SHA-256 hash of data as hex.
func HashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashStrings fingerprints an ordered list of strings. The parts are
// length-prefixed so that ("ab","c") and ("a","bc") hash differently.
func HashStrings(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		fmt.Fprintf(&b, "%d:%s", len(p), p)
	}
	return HashBytes([]byte(b.String()))
}

// FileFingerprint derives a fingerprint for a file on disk from its path,
// size, and modification time. Content is not read: the modification marker
// is enough to detect edits, and a false invalidation only costs a re-parse.
func FileFingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return HashStrings(path, fmt.Sprintf("%d", info.Size()), info.ModTime().UTC().Format("2006-01-02T15:04:05.000000000")), nil
}
