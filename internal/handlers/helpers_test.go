package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"weaver/career-coach/internal/models"
	"weaver/career-coach/internal/services"
)

// fakeCoach returns scripted results so handler tests exercise status codes
// and wire formats without a database or model client.
type fakeCoach struct {
	session    *models.Session
	skipped    bool
	err        error
	fragments  []string
	lastInput  string
	attachedAs string
}

func newFakeCoach() *fakeCoach {
	return &fakeCoach{
		session: &models.Session{
			ID:           uuid.New(),
			State:        models.StateEmpty,
			LastActiveAt: time.Now(),
		},
	}
}

func (f *fakeCoach) CreateSession(ctx context.Context) (*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeCoach) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeCoach) AttachResume(ctx context.Context, sessionID uuid.UUID, upload services.Upload) (*models.Session, bool, error) {
	f.attachedAs = models.DocTypeResume
	f.lastInput = upload.OriginalName
	if f.err != nil {
		return nil, false, f.err
	}
	return f.session, f.skipped, nil
}

func (f *fakeCoach) AttachJobDescription(ctx context.Context, sessionID uuid.UUID, upload services.Upload) (*models.Session, bool, error) {
	f.attachedAs = models.DocTypeJobDescription
	f.lastInput = upload.OriginalName
	if f.err != nil {
		return nil, false, f.err
	}
	return f.session, f.skipped, nil
}

func (f *fakeCoach) stream(sink services.FragmentSink) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	var full bytes.Buffer
	for _, fragment := range f.fragments {
		full.WriteString(fragment)
		if sink != nil {
			if err := sink(fragment); err != nil {
				return "", err
			}
		}
	}
	return full.String(), nil
}

func (f *fakeCoach) StreamPendingTurn(ctx context.Context, sessionID uuid.UUID, sink services.FragmentSink) (string, error) {
	return f.stream(sink)
}

func (f *fakeCoach) StreamFollowUp(ctx context.Context, sessionID uuid.UUID, question string, sink services.FragmentSink) (string, error) {
	f.lastInput = question
	return f.stream(sink)
}

func (f *fakeCoach) StreamBullets(ctx context.Context, sessionID uuid.UUID, description string, sink services.FragmentSink) (string, error) {
	f.lastInput = description
	return f.stream(sink)
}

// multipartFile builds a one-file multipart request body for upload tests.
func multipartFile(fieldName, fileName, contentType string, data []byte) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="` + fieldName + `"; filename="` + fileName + `"`}
	header["Content-Type"] = []string{contentType}

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &body, writer.FormDataContentType(), nil
}

func newUploadRequest(path, fileName, contentType string, data []byte) (*http.Request, error) {
	body, bodyType, err := multipartFile("file", fileName, contentType, data)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", bodyType)
	return req, nil
}
