package services

import "strings"

// injectionKeywords are the phrases the guard scans for, case-insensitively.
// This is a known-weak heuristic: it catches the common English phrasings and
// nothing else (paraphrases, encodings, and other languages pass straight
// through). It must never be relied on as a security boundary.
var injectionKeywords = []string{
	"ignore previous instructions",
	"disregard",
	"system prompt",
	"confidential",
	"reveal your prompt",
	"your instructions are",
	"change your persona",
	"you are now",
}

type GuardService interface {
	IsSuspicious(input string) bool
}

type guardService struct{}

func NewGuardService() GuardService {
	return &guardService{}
}

// IsSuspicious implements GuardService.
func (g *guardService) IsSuspicious(input string) bool {
	lowered := strings.ToLower(input)
	for _, keyword := range injectionKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
