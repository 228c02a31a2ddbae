package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Canonicalize builds the deterministic query string the gateway signs:
// keys sorted byte-wise ascending, empty values dropped, keys and values
// form-encoded (space as '+'), pairs joined with '&'.
func Canonicalize(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(fields[k]))
	}
	return b.String()
}

// Sign computes the lowercase hex HMAC-SHA-512 digest of data under secret.
func Sign(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature over fields with the hash-bearing keys
// removed and compares it to providedHash, ignoring hex case.
func Verify(secret string, fields map[string]string, providedHash string) bool {
	if providedHash == "" {
		return false
	}

	rest := make(map[string]string, len(fields))
	for k, v := range fields {
		if k == FieldSecureHash || k == FieldSecureHashType {
			continue
		}
		rest[k] = v
	}

	expected := Sign(secret, Canonicalize(rest))
	return strings.EqualFold(expected, providedHash)
}
