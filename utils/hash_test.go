package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSha256Hex(t *testing.T) {
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		Sha256Hex([]byte("abc")),
	)
}

func TestTelegramLoginHash(t *testing.T) {
	params := map[string]string{
		"id":         "555",
		"first_name": "Dave",
		"auth_date":  "1700000000",
	}

	first := TelegramLoginHash(params, "bot-token")
	second := TelegramLoginHash(params, "bot-token")
	assert.Equal(t, first, second)

	params["first_name"] = "Mallory"
	assert.NotEqual(t, first, TelegramLoginHash(params, "bot-token"))

	params["first_name"] = "Dave"
	assert.NotEqual(t, first, TelegramLoginHash(params, "other-token"))
}

func TestObfuscatedFileNameDiffers(t *testing.T) {
	assert.NotEqual(t, ObfuscatedFileName("a"), ObfuscatedFileName("a"))
	assert.Len(t, ObfuscatedFileName("a"), 64)
}
