package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Key derives the cache key for a computation over a source file. The key
// covers the file's identity (path, size, modification time) and the
// processing parameters, so any change to the file or the parameters yields a
// different key while an unchanged file always yields the same one.
func Key(path string, size int64, mtime time.Time, params string) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d|%d|%s", path, size, mtime.UnixNano(), params))
	return hex.EncodeToString(sum[:])
}

// DigestKey derives a cache key from arbitrary string parts. Used for cached
// collaborator responses that are not tied to a local file.
func DigestKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}
