package quiz

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// NormalizeSources trims, de-duplicates, and sorts document identifiers.
// An empty list or a blank identifier is invalid input.
func NormalizeSources(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, invalidf("at least one document identifier is required")
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for i, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, invalidf("document identifier %d is empty", i)
		}
		if strings.Contains(id, "|") {
			return nil, invalidf("document identifier %q contains '|'", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// ContentKey is the hex SHA-256 of the sorted, pipe-joined identifiers. For
// a single document this is the hash of its identifier alone. sources must
// already be normalized.
func ContentKey(sources []string) string {
	sum := sha256.Sum256([]byte(strings.Join(sources, "|")))
	return hex.EncodeToString(sum[:])
}
