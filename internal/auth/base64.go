package auth

import "encoding/base64"

// looksBase64 reports whether a keyfile payload should be base64-decoded
// before JSON parsing. Any character outside the standard alphabet and
// padding rejects the value, including whitespace and non-ASCII; the
// stdlib decoder alone is not enough here because it skips newlines.
// Non-canonical trailing padding bits are accepted. This is a heuristic,
// not a security check: short strings can classify either way.
func looksBase64(value string) bool {
	for i := 0; i < len(value); i++ {
		if !isBase64Char(value[i]) {
			return false
		}
	}
	_, err := base64.StdEncoding.DecodeString(value)
	return err == nil
}

func isBase64Char(c byte) bool {
	return c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c >= '0' && c <= '9' ||
		c == '+' || c == '/' || c == '='
}

// decodeBase64 decodes a base64 payload to UTF-8 text.
func decodeBase64(value string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(value)
}
