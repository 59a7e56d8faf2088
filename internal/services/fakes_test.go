package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-structurer/internal/docgen"
	"alfredoptarigan/resume-structurer/internal/models"
	"alfredoptarigan/resume-structurer/internal/repositories"
	"alfredoptarigan/resume-structurer/internal/structurer"
)

const samplePayload = `{
  "contact": {"name": "Jane Doe", "email": "jane@example.com", "linkedin": "https://www.linkedin.com/in/jane"},
  "title": "Backend Engineer",
  "technical_skills": {"Languages": ["Go", "Python"], "Tools": ["Docker"]},
  "work_experience": [
    {"company": "Acme", "role": "Engineer", "dates": "Jan 2020 – Present", "achievements": ["Built the billing pipeline"]}
  ],
  "education": [{"institution": "MIT", "degree": "BSc", "graduation_year": "2019"}]
}`

type fakeGateway struct {
	mu     sync.Mutex
	out    string
	err    error
	calls  int
	inputs []string
	block  bool
}

func (f *fakeGateway) Name() string { return "fake" }

func (f *fakeGateway) Extract(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.inputs = append(f.inputs, text)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.out, f.err
}

func (f *fakeGateway) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeDocumentRepo struct {
	created []*models.Document
	err     error
}

func (f *fakeDocumentRepo) Create(doc *models.Document) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, doc)
	return nil
}

func (f *fakeDocumentRepo) FindByID(id uuid.UUID) (*models.Document, error) {
	for _, d := range f.created {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, repositories.ErrNotFound
}

type fakeResultRepo struct {
	created []*models.ParseResult
}

func (f *fakeResultRepo) Create(r *models.ParseResult) error {
	f.created = append(f.created, r)
	return nil
}

func (f *fakeResultRepo) FindByID(id uuid.UUID) (*models.ParseResult, error) {
	for _, r := range f.created {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeResultRepo) FindRecent(limit int) ([]models.ParseResult, error) {
	var out []models.ParseResult
	for i := len(f.created) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *f.created[i])
	}
	return out, nil
}

func sampleRecord(t *testing.T) *models.ResumeRecord {
	t.Helper()
	st, err := structurer.New(structurer.DefaultConfig())
	require.NoError(t, err)
	rec, _, err := st.Structure(samplePayload)
	require.NoError(t, err)
	return rec
}

// renderDocument produces a real upload fixture with the document generator.
func renderDocument(t *testing.T, rec *models.ResumeRecord, f docgen.Format) []byte {
	t.Helper()
	g, err := docgen.NewGenerator(docgen.DefaultRegistry(docgen.RegistryOptions{}), docgen.Letter, []docgen.Format{f})
	require.NoError(t, err)
	data, err := g.Render(context.Background(), rec, f)
	require.NoError(t, err)
	return data
}
