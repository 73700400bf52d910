package handlers

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"

	"weaver/career-coach/internal/repositories"
	"weaver/career-coach/internal/services"
)

// SSE event payloads. Event types: chunk (partial text), done (full
// response), error (rendered failure).
type sseChunkData struct {
	Text string `json:"text"`
}

type sseDoneData struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

type sseErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeSSEChunk(w *bufio.Writer, text string) error {
	data, _ := json.Marshal(sseChunkData{Text: text})
	if _, err := fmt.Fprintf(w, "event: chunk\ndata: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}

func writeSSEDone(w *bufio.Writer, response, sessionID string) {
	data, _ := json.Marshal(sseDoneData{Response: response, SessionID: sessionID})
	fmt.Fprintf(w, "event: done\ndata: %s\n\n", data)
	w.Flush()
}

func writeSSEError(w *bufio.Writer, code, message string) {
	data, _ := json.Marshal(sseErrorData{Code: code, Message: message})
	fmt.Fprintf(w, "event: error\ndata: %s\n\n", data)
	w.Flush()
}

// sseErrorFor maps service failures onto SSE error codes and the messages
// rendered inline in the chat.
func sseErrorFor(err error) (code, message string) {
	switch {
	case errors.Is(err, services.ErrSuspiciousInput):
		return "SUSPICIOUS_INPUT", services.RefusalMessage
	case errors.Is(err, services.ErrMissingAPIKey):
		return "MISSING_API_KEY", "The model API key is not configured. Please contact the operator."
	case errors.Is(err, services.ErrAuth):
		return "AUTH_ERROR", "Authentication with the model provider failed."
	case errors.Is(err, services.ErrRateLimited):
		return "RATE_LIMITED", "The model provider is rate limiting requests. Please try again shortly."
	case errors.Is(err, services.ErrNetwork):
		return "UPSTREAM_ERROR", "The model provider could not be reached. Please try again."
	case errors.Is(err, services.ErrNoPendingTurn):
		return "NO_PENDING_TURN", "There is nothing waiting for a response in this session."
	case errors.Is(err, services.ErrEmptyInput):
		return "EMPTY_INPUT", "Please enter some text first."
	case errors.Is(err, repositories.ErrSessionNotFound):
		return "SESSION_NOT_FOUND", "Session not found."
	default:
		return "INTERNAL_ERROR", err.Error()
	}
}
