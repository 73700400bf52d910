package models

type SessionResponse struct {
	ID         string         `json:"id"`
	State      string         `json:"state"`
	ResumeName string         `json:"resume_name,omitempty"`
	JDName     string         `json:"jd_name,omitempty"`
	Transcript []TurnResponse `json:"transcript"`
}

type TurnResponse struct {
	Role string `json:"role"`
	Kind string `json:"kind"`
	Body string `json:"body"`
}

// TranscriptOf builds the client-visible transcript: every turn that has a
// body, in sequence order, regardless of turns still pending a response.
func TranscriptOf(s *Session) []TurnResponse {
	transcript := make([]TurnResponse, 0, len(s.Turns))
	for _, turn := range s.Turns {
		if turn.Body == nil {
			continue
		}
		transcript = append(transcript, TurnResponse{
			Role: string(turn.Role),
			Kind: string(turn.Kind),
			Body: *turn.Body,
		})
	}
	return transcript
}

// NewSessionResponse maps a session onto its API representation.
func NewSessionResponse(s *Session) SessionResponse {
	return SessionResponse{
		ID:         s.ID.String(),
		State:      string(s.State),
		ResumeName: s.ProcessedResumeName,
		JDName:     s.ProcessedJDName,
		Transcript: TranscriptOf(s),
	}
}

type UploadResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	DocType   string `json:"doc_type"`
	Filename  string `json:"filename"`
	Skipped   bool   `json:"skipped"`
	Message   string `json:"message"`
}

type MessageRequest struct {
	Message string `json:"message"`
}

type BulletRequest struct {
	Description string `json:"description"`
}
