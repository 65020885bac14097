package utils

import (
	"strconv"
	"time"

	"chat-service/config"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens struct to describe tokens object.
type Tokens struct {
	Access  string
	Refresh string
	Expires time.Time
}

// TokenMetadata struct to describe metadata in JWT.
type TokenMetadata struct {
	TelegramID string
	Exp        int64
}

// GenerateTokens func for generate a new Access & Refresh tokens.
func GenerateTokens(telegramID string) (*Tokens, error) {
	// Generate JWT Access token.
	accessToken, expires, err := generateToken(
		telegramID,
		"JWT_ACCESS_EXPIRE",
		"JWT_ACCESS_KEY",
	)
	if err != nil {
		return nil, err
	}

	// Generate JWT Refresh token.
	refreshToken, _, err := generateToken(
		telegramID,
		"JWT_REFRESH_EXPIRE",
		"JWT_REFRESH_KEY",
	)
	if err != nil {
		return nil, err
	}

	return &Tokens{
		Access:  accessToken,
		Refresh: refreshToken,
		Expires: expires,
	}, nil
}

func generateToken(telegramID string, expire string, key string) (string, time.Time, error) {
	minutesCount, _ := strconv.Atoi(config.Config(expire))
	expiresAt := time.Now().Add(time.Minute * time.Duration(minutesCount))

	claims := jwt.MapClaims{}

	claims["telegramId"] = telegramID
	claims["exp"] = expiresAt.Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	t, err := token.SignedString([]byte(config.Config(key)))
	if err != nil {
		return "", time.Time{}, err
	}

	return t, expiresAt, nil
}

func CheckAndExtractTokenMetadata(token string, key string) (*TokenMetadata, error) {
	t, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.Config(key)), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := t.Claims.(jwt.MapClaims); ok && t.Valid {
		return &TokenMetadata{
			TelegramID: claims["telegramId"].(string),
			Exp:        int64(claims["exp"].(float64)),
		}, nil
	}

	return nil, err
}
