package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Sha256Hex returns the lowercase hex sha256 of data.
func Sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// TelegramLoginHash computes the login-widget check hash: params sorted as
// "k=v" lines joined by newlines, HMAC-SHA256 keyed with sha256(botToken).
func TelegramLoginHash(params map[string]string, botToken string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s=%s", k, params[k]))
	}
	dataCheckString := strings.Join(lines, "\n")

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(dataCheckString))
	return hex.EncodeToString(mac.Sum(nil))
}

// ObfuscatedFileName derives the public hash handed to clients from the
// stored file name, salted with the current time so two uploads of the
// same bytes by different owners still get distinct public names.
func ObfuscatedFileName(name string) string {
	return Sha256Hex([]byte(fmt.Sprintf("%s-%d", name, time.Now().UnixNano())))
}
