package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// validSignature checks the X-Hub-Signature-256 header Meta attaches to
// webhook deliveries: "sha256=<hex>" over the raw body, keyed with the
// app secret. Constant-time compare.
func validSignature(body []byte, signature, appSecret string) bool {
	hexSig, ok := strings.CutPrefix(signature, "sha256=")
	if !ok {
		return false
	}
	sig, err := hex.DecodeString(hexSig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return hmac.Equal(sig, mac.Sum(nil))
}
