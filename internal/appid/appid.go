// Package appid generates the opaque identifiers that name proxy
// instances and derives the synthetic hostnames built from them. The
// hostname doubles as the backing container's name, which is the only
// index of live proxies: parsing it back is how state is reconstructed.
package appid

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Length is the number of characters in a generated identifier.
const Length = 10

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Naming-convention markers. A container belongs to this tool only when
// its name carries both.
const (
	markerService = "execute-api"
	markerDomain  = "amazonaws.com"
)

// New returns a fresh identifier: Length characters drawn uniformly from
// lowercase letters and digits. Uniqueness among live proxies is
// probabilistic, not enforced.
func New() string {
	b := make([]byte, Length)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}

// Hostname derives the synthetic hostname for an identifier in a region.
func Hostname(id, region string) string {
	return fmt.Sprintf("%s.execute-api.%s.amazonaws.com", id, region)
}

// Matches reports whether a container name follows the naming convention.
func Matches(name string) bool {
	return strings.Contains(name, markerService) && strings.Contains(name, markerDomain)
}

// Parse recovers the identifier from a hostname or container name. The
// identifier is the segment before the first dot; ok is false when the
// name does not follow the naming convention.
func Parse(name string) (id string, ok bool) {
	if !Matches(name) {
		return "", false
	}
	id, _, found := strings.Cut(name, ".")
	if !found || id == "" {
		return "", false
	}
	return id, true
}
