package sprinkler

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
)

var md5Hex = regexp.MustCompile(`^[0-9a-f]{32}$`)

// HashPassword returns the lowercase hex MD5 digest the firmware expects in
// pw, npw and cpw.
func HashPassword(plain string) string {
	sum := md5.Sum([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// NormalizePassword hashes plain unless it already looks like an MD5 hex
// digest, so configuration can hold either form.
func NormalizePassword(plain string) string {
	if md5Hex.MatchString(plain) {
		return plain
	}
	return HashPassword(plain)
}
