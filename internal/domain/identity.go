package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const idSep = "\x1f"

// ListingID derives the dedup key for a listing. When both organization and
// title are blank the apply URL is hashed instead.
func ListingID(organization, title, source, applyURL string) string {
	org := strings.TrimSpace(organization)
	t := strings.TrimSpace(title)
	if org == "" && t == "" {
		return HashString("url:" + strings.TrimSpace(applyURL))
	}
	return HashString(strings.Join([]string{org, t, strings.TrimSpace(source)}, idSep))
}

func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
