// Package phone masks contact numbers before they leave the server.
// Masking is a server-side contract on every response path that could
// leak contact info; clients never see a raw phone without a match.
package phone

const (
	visiblePrefixLen = 4
	maskSuffix       = "******"
)

// Mask returns a fixed-length visible prefix followed by a fixed mask
// suffix. Numbers shorter than the prefix are masked entirely.
func Mask(p string) string {
	if p == "" {
		return ""
	}
	if len(p) <= visiblePrefixLen {
		return maskSuffix
	}
	return p[:visiblePrefixLen] + maskSuffix
}
