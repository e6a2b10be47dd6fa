package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoAuthHeader  = errors.New("authorization header not found")
	ErrInvalidApiKey = errors.New("invalid api key")
)

func ParseApiKey(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoAuthHeader
	}

	var apiKey string
	n, err := fmt.Sscanf(authHeader, "ApiKey %s", &apiKey)
	if n != 1 || err != nil {
		return "", ErrNoAuthHeader
	}

	return apiKey, nil
}

// Authorize checks the request's api key against the expected key. An empty
// expected key disables the check.
func Authorize(r *http.Request, expected string) error {
	if expected == "" {
		return nil
	}

	apiKey, err := ParseApiKey(r)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
		return ErrInvalidApiKey
	}

	return nil
}
