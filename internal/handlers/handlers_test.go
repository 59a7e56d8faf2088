package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"alfredoptarigan/resume-structurer/internal/docgen"
	"alfredoptarigan/resume-structurer/internal/logging"
	"alfredoptarigan/resume-structurer/internal/models"
	"alfredoptarigan/resume-structurer/internal/repositories"
	"alfredoptarigan/resume-structurer/internal/services"
	"alfredoptarigan/resume-structurer/internal/structurer"
)

const testMaxFileSize = 1024

const payload = `{"contact": {"name": "Jane Doe", "email": "jane@example.com"},
  "technical_skills": ["Python", "python", "PYTHON", "Go"],
  "work_experience": [{"company": "Acme", "role": "Engineer", "dates": "2021-06 – Present"}]}`

// stubParser delegates Structure and Render to a real service and answers
// Parse with a canned outcome.
type stubParser struct {
	services.ParseService
	outcome *services.ParseOutcome
	err     error
	inputs  []services.ParseInput
}

func (s *stubParser) Parse(_ context.Context, in services.ParseInput) (*services.ParseOutcome, error) {
	s.inputs = append(s.inputs, in)
	return s.outcome, s.err
}

type stubResults struct {
	results []models.ParseResult
}

func (s *stubResults) Create(*models.ParseResult) error { return nil }

func (s *stubResults) FindByID(id uuid.UUID) (*models.ParseResult, error) {
	for i := range s.results {
		if s.results[i].ID == id {
			return &s.results[i], nil
		}
	}
	return nil, fmt.Errorf("parse result %s: %w", id, repositories.ErrNotFound)
}

func (s *stubResults) FindRecent(limit int) ([]models.ParseResult, error) {
	return s.results[:min(limit, len(s.results))], nil
}

type stubDocuments struct {
	docs []models.Document
}

func (s *stubDocuments) Create(doc *models.Document) error {
	s.docs = append(s.docs, *doc)
	return nil
}

func (s *stubDocuments) FindByID(id uuid.UUID) (*models.Document, error) {
	for i := range s.docs {
		if s.docs[i].ID == id {
			return &s.docs[i], nil
		}
	}
	return nil, fmt.Errorf("document %s: %w", id, repositories.ErrNotFound)
}

type testServer struct {
	app     *fiber.App
	parser  *stubParser
	results *stubResults
	docs    *stubDocuments
	outputs string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	html := docgen.NewHTMLEncoder()
	registry := docgen.NewRegistry()
	registry.Register(docgen.FormatHTML, html)
	registry.Register(docgen.FormatMarkdown, docgen.NewMarkdownEncoder(html))
	gen, err := docgen.NewGenerator(registry, docgen.Letter, nil)
	require.NoError(t, err)
	st, err := structurer.New(structurer.DefaultConfig())
	require.NoError(t, err)

	root := t.TempDir()
	storage := services.NewStorageService(filepath.Join(root, "uploads"), filepath.Join(root, "outputs"))
	require.NoError(t, storage.EnsureDirs())

	svc := services.NewParseService(services.NewTextExtractor(), nil, st, gen, storage, nil, nil, logging.Discard())
	ts := &testServer{
		parser:  &stubParser{ParseService: svc},
		results: &stubResults{},
		docs:    &stubDocuments{},
		outputs: filepath.Join(root, "outputs"),
	}

	ts.app = NewApp(testMaxFileSize, io.Discard)
	RegisterRoutes(ts.app, Handlers{
		Parse:     NewParseHandler(ts.parser, testMaxFileSize, logging.Discard()),
		Structure: NewStructureHandler(ts.parser, gen),
		Download:  NewDownloadHandler(storage),
		Result:    NewResultHandler(ts.results, ts.docs),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, body
}

func uploadRequest(t *testing.T, target, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := w.CreateFormFile(field, "cv.pdf")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, target string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestParseSuccess(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.New()
	ts.parser.outcome = &services.ParseOutcome{
		ID:     id,
		Record: &models.ResumeRecord{Personal: models.Personal{Name: "Jane", Email: "jane@example.com"}},
		Renders: []models.RenderInfo{
			{Format: "html", Filename: "html_x.html"},
			{Format: "pdf", Error: "render pdf: serialization failed"},
		},
	}

	for _, target := range []string{"/api/v1/parse?formats=html,%20PDF", "/api/parse?formats=html,%20PDF"} {
		resp, body := ts.do(t, uploadRequest(t, target, "file", []byte("%PDF-1.4")))
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

		var out models.ParseResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, id.String(), out.ID)
		assert.Equal(t, "Jane", out.Record.Personal.Name)
		assert.NotNil(t, out.Warnings)
		assert.Equal(t, "/api/v1/download/html_x.html", out.Renders[0].DownloadURL)
		assert.Empty(t, out.Renders[1].DownloadURL)
		assert.Equal(t, "render pdf: serialization failed", out.Renders[1].Error)
	}

	require.Len(t, ts.parser.inputs, 2)
	assert.Equal(t, []docgen.Format{docgen.FormatHTML, docgen.FormatPDF}, ts.parser.inputs[0].Formats)
	assert.Equal(t, "cv.pdf", ts.parser.inputs[0].Filename)
	assert.Equal(t, []byte("%PDF-1.4"), ts.parser.inputs[0].Data)
}

func TestParseFormatsDropsRepeats(t *testing.T) {
	assert.Equal(t, []docgen.Format{docgen.FormatPDF, docgen.FormatMarkdown}, parseFormats("pdf, PDF,md,,markdown ,pdf"))
	assert.Nil(t, parseFormats(""))
}

func TestParseInputErrors(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, uploadRequest(t, "/api/v1/parse", "", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.do(t, uploadRequest(t, "/api/v1/parse", "file", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.do(t, uploadRequest(t, "/api/v1/parse", "file", bytes.Repeat([]byte("x"), testMaxFileSize+1)))
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)

	assert.Empty(t, ts.parser.inputs)
}

func TestParseErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{services.ErrUnsupportedFileType, fiber.StatusUnsupportedMediaType, ""},
		{structurer.ErrUnparseable, fiber.StatusUnprocessableEntity, `{"error":"unparseable"}`},
		{services.ErrNoText, fiber.StatusUnprocessableEntity, `{"error":"unparseable"}`},
		{&structurer.InvalidError{Fields: []string{"personal.email"}}, fiber.StatusUnprocessableEntity, `{"error":"invalid","fields":["personal.email"]}`},
		{&docgen.RenderError{Format: "csv", Err: docgen.ErrUnsupportedFormat}, fiber.StatusBadRequest, ""},
		{services.ErrGatewayTimeout, fiber.StatusGatewayTimeout, ""},
		{services.ErrGatewayUnavailable, fiber.StatusBadGateway, ""},
		{services.ErrGatewayQuotaExceeded, fiber.StatusTooManyRequests, ""},
		{fmt.Errorf("failed to save file: %w", os.ErrPermission), fiber.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tc := range cases {
		ts := newTestServer(t)
		ts.parser.err = tc.err

		resp, body := ts.do(t, uploadRequest(t, "/api/v1/parse", "file", []byte("%PDF-1.4")))
		assert.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
		if tc.body != "" {
			assert.JSONEq(t, tc.body, string(body))
		}
	}
}

func TestParseAllRendersFailedKeepsRecord(t *testing.T) {
	ts := newTestServer(t)
	ts.parser.outcome = &services.ParseOutcome{
		ID:      uuid.New(),
		Record:  &models.ResumeRecord{Personal: models.Personal{Name: "Jane", Email: "jane@example.com"}},
		Renders: []models.RenderInfo{{Format: "pdf", Error: "boom"}},
	}
	ts.parser.err = fmt.Errorf("%w: 1 format(s) requested", services.ErrAllRendersFailed)

	resp, body := ts.do(t, uploadRequest(t, "/api/v1/parse", "file", []byte("%PDF-1.4")))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var out models.ParseResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "Jane", out.Record.Personal.Name)
	assert.Equal(t, "boom", out.Renders[0].Error)
}

func TestStructureEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, jsonRequest(t, "/api/v1/structure", models.StructureRequest{Payload: payload}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var out models.StructureResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, []string{"Python", "Go"}, out.Record.Skills)
	assert.Equal(t, "2021-06", out.Record.Experience[0].Start.String())

	resp, body = ts.do(t, jsonRequest(t, "/api/v1/structure", models.StructureRequest{Payload: `{"contact": {"name": "Jane"}}`}))
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.JSONEq(t, `{"error":"invalid","fields":["personal.email"]}`, string(body))

	resp, _ = ts.do(t, jsonRequest(t, "/api/v1/structure", models.StructureRequest{}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRenderEndpoint(t *testing.T) {
	ts := newTestServer(t)
	rec := models.ResumeRecord{Personal: models.Personal{Name: "Jane Doe", Email: "jane@example.com"}, Skills: []string{"Go"}}

	resp, body := ts.do(t, jsonRequest(t, "/api/v1/render?format=md", rec))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "# Jane Doe")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), `resume.md`)

	resp, _ = ts.do(t, jsonRequest(t, "/api/v1/render?format=csv", rec))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	rec.Personal.Email = "not-an-email"
	resp, body = ts.do(t, jsonRequest(t, "/api/v1/render?format=html", rec))
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.JSONEq(t, `{"error":"invalid","fields":["personal.email"]}`, string(body))
}

func TestFormatsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/formats", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"formats":["html","markdown"]}`, string(body))
}

func TestDownloadEndpoint(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(ts.outputs, "html_1.html"), []byte("<html></html>"), 0644))

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/download/html_1.html", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html></html>", string(body))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "html_1.html")

	resp, _ = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/download/missing.pdf", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/download/..%2F..%2Fetc%2Fpasswd", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestResultEndpoints(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.New()
	msg := "structuring failed: invalid record: personal.email"
	ts.results.results = []models.ParseResult{{
		ID:           id,
		Status:       models.StatusInvalid,
		InvalidField: datatypes.JSON(`["personal.email"]`),
		ErrorMessage: &msg,
	}}

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/result/"+id.String(), nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out models.ResultResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "invalid", out.Status)
	assert.Equal(t, []string{"personal.email"}, out.Fields)
	assert.Equal(t, msg, *out.ErrorMessage)

	resp, _ = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/result/"+uuid.NewString(), nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/result/not-a-uuid", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/results?limit=5", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), id.String())
}

func TestResultIncludesDocument(t *testing.T) {
	ts := newTestServer(t)
	docID := uuid.New()
	uploaded := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	ts.docs.docs = []models.Document{{
		ID:               docID,
		OriginalFileName: "jane.pdf",
		ContentType:      services.MIMEPDF,
		FilePath:         "/srv/uploads/0b9c.pdf",
		Size:             2048,
		CreatedAt:        uploaded,
	}}
	withDoc, orphaned, bare := uuid.New(), uuid.New(), uuid.New()
	missing := uuid.New()
	ts.results.results = []models.ParseResult{
		{ID: withDoc, Status: models.StatusSucceeded, DocumentID: &docID},
		{ID: orphaned, Status: models.StatusSucceeded, DocumentID: &missing},
		{ID: bare, Status: models.StatusSucceeded},
	}

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/result/"+withDoc.String(), nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "/srv/uploads")

	var out models.ResultResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotNil(t, out.Document)
	assert.Equal(t, docID.String(), out.Document.ID)
	assert.Equal(t, "jane.pdf", out.Document.OriginalFileName)
	assert.Equal(t, int64(2048), out.Document.Size)
	assert.True(t, uploaded.Equal(out.Document.UploadedAt))

	for _, id := range []uuid.UUID{orphaned, bare} {
		resp, body = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/result/"+id.String(), nil))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		out = models.ResultResponse{}
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Nil(t, out.Document)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"healthy"`)
}
