package ai

import "errors"

var (
	// ErrAPIKeyNotConfigured is returned when the OpenAI key is missing or
	// still set to the placeholder value. Callers treat it as "AI disabled".
	ErrAPIKeyNotConfigured = errors.New("openai api key is not configured")

	ErrRequestFailed   = errors.New("openai request failed")
	ErrInvalidResponse = errors.New("invalid openai response")
)
