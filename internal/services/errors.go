package services

import (
	"errors"
	"net/http"

	"google.golang.org/genai"
)

// Failure classes surfaced to the client as rendered messages. None of them
// is fatal to the process; every path ends in a displayed error and the
// service keeps accepting input.
var (
	// ErrMissingAPIKey is returned before any outbound call when no Gemini
	// API key is configured.
	ErrMissingAPIKey = errors.New("gemini api key is not configured")

	// ErrAuth marks a rejected credential on the model endpoint.
	ErrAuth = errors.New("authentication with the model provider failed")

	// ErrRateLimited marks a 429 from the model endpoint.
	ErrRateLimited = errors.New("model provider rate limit exceeded")

	// ErrNetwork covers every other failure reaching the model endpoint.
	ErrNetwork = errors.New("model provider request failed")

	// ErrSuspiciousInput is returned when the injection-keyword check flags
	// an upload or a chat message.
	ErrSuspiciousInput = errors.New("input contains suspicious instructions")

	// ErrResumeRequired is returned when a job description arrives before
	// any resume has been loaded.
	ErrResumeRequired = errors.New("a resume must be uploaded first")

	// ErrNoPendingTurn is returned when a stream is requested but no
	// assistant turn is awaiting a response.
	ErrNoPendingTurn = errors.New("no pending assistant turn")

	// ErrEmptyInput is returned for blank chat messages and bullet
	// descriptions.
	ErrEmptyInput = errors.New("input text is empty")
)

// classifyModelError maps a genai SDK failure onto the coarse error classes
// above, keeping the original error in the chain.
func classifyModelError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.Join(ErrAuth, err)
		case http.StatusTooManyRequests:
			return errors.Join(ErrRateLimited, err)
		}
	}
	return errors.Join(ErrNetwork, err)
}
