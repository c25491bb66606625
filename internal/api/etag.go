package api

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// documentETag is a strong validator for a written document body
func documentETag(body string) string {
	sum := sha256.Sum256([]byte(body))
	return fmt.Sprintf(`"%s"`, hex.EncodeToString(sum[:16]))
}

// matchesETag reports whether the If-None-Match header covers etag.
// Weak comparison applies, so W/"x" matches "x".
func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// writeConditional answers with 304 when the client already holds body
func writeConditional(w http.ResponseWriter, r *http.Request, body string) bool {
	etag := documentETag(body)
	w.Header().Set("ETag", etag)
	if matchesETag(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}
