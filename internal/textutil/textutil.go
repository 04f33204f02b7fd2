package textutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// Lock computes the short content hash of a line's text, used to detect
// stale translations: a translated row whose lock no longer matches the
// base text needs review.
func Lock(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])[:8]
}

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
