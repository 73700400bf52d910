package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"weaver/career-coach/internal/models"
	"weaver/career-coach/internal/repositories"
)

const generationTemperature = 0.7

// Upload is the in-memory payload of one uploaded document.
type Upload struct {
	OriginalName string
	ContentType  string
	Data         []byte
}

// FragmentSink receives streamed response fragments as they arrive. A sink
// error aborts the stream (typically a disconnected client).
type FragmentSink func(fragment string) error

// CoachService orchestrates a coaching session: document ingestion, the
// session state machine, and the chat turns streamed from the model. Exactly
// one request is in flight per interaction; there is no queueing and no
// automatic retry.
type CoachService interface {
	CreateSession(ctx context.Context) (*models.Session, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	AttachResume(ctx context.Context, sessionID uuid.UUID, upload Upload) (*models.Session, bool, error)
	AttachJobDescription(ctx context.Context, sessionID uuid.UUID, upload Upload) (*models.Session, bool, error)
	StreamPendingTurn(ctx context.Context, sessionID uuid.UUID, sink FragmentSink) (string, error)
	StreamFollowUp(ctx context.Context, sessionID uuid.UUID, question string, sink FragmentSink) (string, error)
	StreamBullets(ctx context.Context, sessionID uuid.UUID, description string, sink FragmentSink) (string, error)
}

type coachService struct {
	sessionRepo    repositories.SessionRepository
	turnRepo       repositories.TurnRepository
	docRepo        repositories.DocumentRepository
	storage        StorageService
	extractor      ExtractorService
	guard          GuardService
	gemini         GeminiService
	knowledge      KnowledgeService
	promptBuilder  *PromptBuilder
	guidelineLimit int
}

func NewCoachService(
	sessionRepo repositories.SessionRepository,
	turnRepo repositories.TurnRepository,
	docRepo repositories.DocumentRepository,
	storage StorageService,
	extractor ExtractorService,
	guard GuardService,
	gemini GeminiService,
	knowledge KnowledgeService,
	guidelineLimit int,
) CoachService {
	return &coachService{
		sessionRepo:    sessionRepo,
		turnRepo:       turnRepo,
		docRepo:        docRepo,
		storage:        storage,
		extractor:      extractor,
		guard:          guard,
		gemini:         gemini,
		knowledge:      knowledge,
		promptBuilder:  NewPromptBuilder(),
		guidelineLimit: guidelineLimit,
	}
}

// CreateSession implements CoachService.
func (c *coachService) CreateSession(ctx context.Context) (*models.Session, error) {
	now := time.Now()
	session := &models.Session{
		ID:           uuid.New(),
		State:        models.StateEmpty,
		LastActiveAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession implements CoachService.
func (c *coachService) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	return c.sessionRepo.FindByID(sessionID)
}

// AttachResume implements CoachService. Re-uploading the same file name is an
// idempotent skip: no extraction, no state mutation, no new pending turn.
func (c *coachService) AttachResume(ctx context.Context, sessionID uuid.UUID, upload Upload) (*models.Session, bool, error) {
	session, err := c.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, false, err
	}

	if upload.OriginalName != "" && upload.OriginalName == session.ProcessedResumeName {
		return session, true, nil
	}

	text, err := c.ingestDocument(ctx, session, upload, models.DocTypeResume)
	if err != nil {
		return nil, false, err
	}

	session.ResumeText = text
	session.ProcessedResumeName = upload.OriginalName
	if session.State == models.StateEmpty {
		session.State = models.StateResumeLoaded
	}
	session.LastActiveAt = time.Now()

	if err := c.sessionRepo.Update(session); err != nil {
		return nil, false, err
	}
	if err := c.appendPendingTurn(session, models.KindResumeAnalysis); err != nil {
		return nil, false, err
	}

	refreshed, err := c.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, false, err
	}
	return refreshed, false, nil
}

// AttachJobDescription implements CoachService. A job description before any
// resume is rejected without touching stored state.
func (c *coachService) AttachJobDescription(ctx context.Context, sessionID uuid.UUID, upload Upload) (*models.Session, bool, error) {
	session, err := c.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, false, err
	}

	if !session.HasResume() {
		return nil, false, ErrResumeRequired
	}

	if upload.OriginalName != "" && upload.OriginalName == session.ProcessedJDName {
		return session, true, nil
	}

	text, err := c.ingestDocument(ctx, session, upload, models.DocTypeJobDescription)
	if err != nil {
		return nil, false, err
	}

	session.JobDescriptionText = text
	session.ProcessedJDName = upload.OriginalName
	session.State = models.StateResumeAndJD
	session.LastActiveAt = time.Now()

	if err := c.sessionRepo.Update(session); err != nil {
		return nil, false, err
	}
	if err := c.appendPendingTurn(session, models.KindJDTailoring); err != nil {
		return nil, false, err
	}

	refreshed, err := c.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, false, err
	}
	return refreshed, false, nil
}

// StreamPendingTurn implements CoachService. It resolves the oldest assistant
// turn still awaiting a body, streaming fragments into the sink and storing
// the full response when the stream completes. A failed stream leaves the
// turn pending so the client can try again.
func (c *coachService) StreamPendingTurn(ctx context.Context, sessionID uuid.UUID, sink FragmentSink) (string, error) {
	session, err := c.sessionRepo.FindByID(sessionID)
	if err != nil {
		return "", err
	}

	var pending *models.Turn
	for i := range session.Turns {
		turn := &session.Turns[i]
		if turn.Role == models.RoleAssistant && turn.Pending() {
			pending = turn
			break
		}
	}
	if pending == nil {
		return "", ErrNoPendingTurn
	}

	var prompt string
	switch pending.Kind {
	case models.KindJDTailoring:
		prompt = c.promptBuilder.BuildJDTailoringPrompt(session.ResumeText, session.JobDescriptionText)
	default:
		prompt = c.promptBuilder.BuildResumeAnalysisPrompt(session.ResumeText)
	}

	response, err := c.streamToSink(ctx, prompt, sink)
	if err != nil {
		return "", err
	}

	if err := c.turnRepo.SetBody(pending.ID, response); err != nil {
		return "", err
	}
	if err := c.sessionRepo.Touch(sessionID); err != nil {
		log.Printf("⚠️  Failed to touch session %s: %v\n", sessionID, err)
	}
	return response, nil
}

// StreamFollowUp implements CoachService. The user turn is appended before
// the model call; the assistant turn is appended only once the full response
// has streamed.
func (c *coachService) StreamFollowUp(ctx context.Context, sessionID uuid.UUID, question string, sink FragmentSink) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyInput
	}
	if c.guard.IsSuspicious(question) {
		return "", ErrSuspiciousInput
	}

	session, err := c.sessionRepo.FindByID(sessionID)
	if err != nil {
		return "", err
	}

	// History is serialized before the new question is appended, so the
	// question appears only inside its own delimiter.
	history := FormatChatHistory(session.Turns)

	userTurn := &models.Turn{
		ID:        uuid.New(),
		SessionID: session.ID,
		Seq:       len(session.Turns),
		Role:      models.RoleUser,
		Kind:      models.KindMessage,
		Body:      &question,
	}
	if err := c.turnRepo.Append(userTurn); err != nil {
		return "", err
	}

	guidelines := c.retrieveGuidelines(ctx, question)
	prompt := c.promptBuilder.BuildFollowUpPrompt(session.ResumeText, history, guidelines, question)

	response, err := c.streamToSink(ctx, prompt, sink)
	if err != nil {
		return "", err
	}

	assistantTurn := &models.Turn{
		ID:        uuid.New(),
		SessionID: session.ID,
		Seq:       len(session.Turns) + 1,
		Role:      models.RoleAssistant,
		Kind:      models.KindFollowUp,
		Body:      &response,
	}
	if err := c.turnRepo.Append(assistantTurn); err != nil {
		return "", err
	}
	if err := c.sessionRepo.Touch(sessionID); err != nil {
		log.Printf("⚠️  Failed to touch session %s: %v\n", sessionID, err)
	}
	return response, nil
}

// StreamBullets implements CoachService. The result is kept on the session
// for later retrieval but does not enter the chat transcript.
func (c *coachService) StreamBullets(ctx context.Context, sessionID uuid.UUID, description string, sink FragmentSink) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", ErrEmptyInput
	}

	session, err := c.sessionRepo.FindByID(sessionID)
	if err != nil {
		return "", err
	}

	prompt := c.promptBuilder.BuildLatexBulletPrompt(description)
	response, err := c.streamToSink(ctx, prompt, sink)
	if err != nil {
		return "", err
	}

	session.GeneratedBullets = response
	session.LastActiveAt = time.Now()
	if err := c.sessionRepo.Update(session); err != nil {
		return "", err
	}
	return response, nil
}

// ingestDocument runs extraction and the injection guard, then records the
// raw upload on disk. A flagged document never mutates the session.
func (c *coachService) ingestDocument(ctx context.Context, session *models.Session, upload Upload, docType string) (string, error) {
	text, err := c.extractor.ExtractText(ctx, upload.Data, upload.OriginalName, upload.ContentType)
	if err != nil {
		return "", err
	}

	if c.guard.IsSuspicious(text) {
		return "", ErrSuspiciousInput
	}

	filename, filePath, err := c.storage.SaveFile(upload.Data, docType, upload.OriginalName)
	if err != nil {
		return "", err
	}

	doc := &models.Document{
		ID:               uuid.New(),
		SessionID:        session.ID,
		Filename:         filename,
		OriginalFileName: upload.OriginalName,
		DocType:          docType,
		ContentType:      upload.ContentType,
		FilePath:         filePath,
		CreatedAt:        time.Now(),
	}
	if err := c.docRepo.Create(doc); err != nil {
		// Keep the database and disk consistent on insert failure.
		if delErr := c.storage.DeleteFile(filename); delErr != nil {
			log.Printf("⚠️  Failed to clean up file %s: %v\n", filename, delErr)
		}
		return "", err
	}

	return text, nil
}

func (c *coachService) appendPendingTurn(session *models.Session, kind models.TurnKind) error {
	turn := &models.Turn{
		ID:        uuid.New(),
		SessionID: session.ID,
		Seq:       len(session.Turns),
		Role:      models.RoleAssistant,
		Kind:      kind,
	}
	return c.turnRepo.Append(turn)
}

// retrieveGuidelines fetches reference advice for the question. Any failure
// degrades to an empty context; the answer just loses its citations.
func (c *coachService) retrieveGuidelines(ctx context.Context, question string) string {
	if c.knowledge == nil || c.guidelineLimit <= 0 {
		return ""
	}

	embedding, err := c.gemini.GenerateEmbedding(ctx, question)
	if err != nil {
		log.Printf("⚠️  Guideline retrieval skipped: %v\n", err)
		return ""
	}

	snippets, err := c.knowledge.SearchGuidelines(ctx, embedding, c.guidelineLimit)
	if err != nil {
		log.Printf("⚠️  Guideline search failed: %v\n", err)
		return ""
	}
	return FormatGuidelines(snippets)
}

func (c *coachService) streamToSink(ctx context.Context, prompt string, sink FragmentSink) (string, error) {
	var builder strings.Builder
	for fragment, err := range c.gemini.GenerateStream(ctx, prompt, generationTemperature) {
		if err != nil {
			return "", err
		}
		builder.WriteString(fragment)
		if sink != nil {
			if err := sink(fragment); err != nil {
				return "", fmt.Errorf("stream aborted: %w", err)
			}
		}
	}

	response := builder.String()
	if response == "" {
		return "", fmt.Errorf("model returned an empty response")
	}
	return response, nil
}
