package domain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashIP keys the visitor IP by the referral code so one visitor cannot be
// correlated across codes. The raw IP never leaves this function.
func HashIP(salt, ip, code string) string {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(ip))
	mac.Write([]byte{0})
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))
}
