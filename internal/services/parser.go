package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"alfredoptarigan/resume-structurer/internal/docgen"
	"alfredoptarigan/resume-structurer/internal/models"
	"alfredoptarigan/resume-structurer/internal/repositories"
	"alfredoptarigan/resume-structurer/internal/structurer"
)

// ErrAllRendersFailed is returned when every requested format failed to
// render. The outcome still carries the record and per-format errors.
var ErrAllRendersFailed = errors.New("all renders failed")

type ParseInput struct {
	Filename string
	Data     []byte
	Formats  []docgen.Format
}

type ParseOutcome struct {
	ID       uuid.UUID
	Record   *models.ResumeRecord
	Warnings []models.Warning
	Renders  []models.RenderInfo
}

type ParseService interface {
	Parse(ctx context.Context, in ParseInput) (*ParseOutcome, error)
	Structure(raw string) (*models.ResumeRecord, []models.Warning, error)
	Render(ctx context.Context, rec *models.ResumeRecord, format docgen.Format) ([]byte, error)
}

type parseService struct {
	extractor  TextExtractor
	gateway    ExtractionGateway
	structurer *structurer.Structurer
	generator  *docgen.Generator
	storage    StorageService
	docRepo    repositories.DocumentRepository
	resultRepo repositories.ParseResultRepository
	log        *logrus.Logger
}

// NewParseService wires the pipeline. docRepo and resultRepo may be nil, in
// which case nothing is persisted.
func NewParseService(
	extractor TextExtractor,
	gateway ExtractionGateway,
	st *structurer.Structurer,
	generator *docgen.Generator,
	storage StorageService,
	docRepo repositories.DocumentRepository,
	resultRepo repositories.ParseResultRepository,
	log *logrus.Logger,
) ParseService {
	return &parseService{
		extractor:  extractor,
		gateway:    gateway,
		structurer: st,
		generator:  generator,
		storage:    storage,
		docRepo:    docRepo,
		resultRepo: resultRepo,
		log:        log,
	}
}

func (p *parseService) Structure(raw string) (*models.ResumeRecord, []models.Warning, error) {
	return p.structurer.Structure(raw)
}

// Render checks the record before rendering so hand-written records get the
// same guarantees as structured ones.
func (p *parseService) Render(ctx context.Context, rec *models.ResumeRecord, format docgen.Format) ([]byte, error) {
	if !p.generator.Supports(format) {
		return nil, &docgen.RenderError{Format: format, Err: docgen.ErrUnsupportedFormat}
	}
	if err := p.structurer.Check(rec); err != nil {
		return nil, err
	}
	return p.generator.Render(ctx, rec, format)
}

// Parse runs extraction, structuring and rendering for one uploaded file.
// Gateway and structuring errors are returned as they are.
func (p *parseService) Parse(ctx context.Context, in ParseInput) (*ParseOutcome, error) {
	formats := uniqueFormats(in.Formats)
	if len(formats) == 0 {
		formats = p.generator.Formats()
	}
	for _, f := range formats {
		if !p.generator.Supports(f) {
			return nil, &docgen.RenderError{Format: f, Err: docgen.ErrUnsupportedFormat}
		}
	}

	contentType, err := p.extractor.Detect(in.Data)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	logger := p.log.WithFields(logrus.Fields{"parse_id": id.String(), "file": in.Filename})
	logger.Info("📄 Parsing résumé")
	start := time.Now()

	docID, err := p.storeUpload(in, contentType)
	if err != nil {
		return nil, err
	}

	extracted, err := p.extractor.Extract(in.Data)
	if err != nil {
		p.saveResult(id, docID, models.StatusUnparseable, nil, err)
		return nil, err
	}
	logger.WithField("pages", extracted.PageCount).Debug("🔍 Text extracted")

	raw, err := p.gateway.Extract(ctx, extracted.Text)
	if err != nil {
		p.saveResult(id, docID, models.StatusGatewayFail, nil, err)
		return nil, err
	}

	record, warnings, err := p.structurer.Structure(raw)
	if err != nil {
		status := models.StatusUnparseable
		var invalid *structurer.InvalidError
		if errors.As(err, &invalid) {
			status = models.StatusInvalid
		}
		p.saveResult(id, docID, status, nil, err)
		return nil, err
	}

	outcome := &ParseOutcome{ID: id, Record: record, Warnings: warnings}
	succeeded := 0
	for _, res := range p.generator.RenderAll(ctx, record, formats) {
		info := p.storeRender(id, res)
		if info.Error == "" {
			succeeded++
		} else {
			logger.WithField("format", res.Format).Warn("⚠️ " + info.Error)
		}
		outcome.Renders = append(outcome.Renders, info)
	}

	logger.WithFields(logrus.Fields{
		"warnings": len(warnings),
		"renders":  succeeded,
		"duration": time.Since(start).String(),
	}).Info("✅ Parse completed")

	if succeeded == 0 {
		err := fmt.Errorf("%w: %d format(s) requested", ErrAllRendersFailed, len(formats))
		p.saveResult(id, docID, models.StatusRenderFail, outcome, err)
		return outcome, err
	}
	p.saveResult(id, docID, models.StatusSucceeded, outcome, nil)
	return outcome, nil
}

// storeUpload writes the upload to disk and records its metadata. The
// returned ID is nil unless the metadata row was stored.
func (p *parseService) storeUpload(in ParseInput, contentType string) (*uuid.UUID, error) {
	ext := ".pdf"
	if contentType == MIMEDOCX {
		ext = ".docx"
	}

	filename, path, err := p.storage.SaveUpload(in.Data, ext)
	if err != nil {
		return nil, err
	}

	if p.docRepo == nil {
		return nil, nil
	}

	doc := &models.Document{
		ID:               uuid.New(),
		Filename:         filename,
		OriginalFileName: filepath.Base(in.Filename),
		ContentType:      contentType,
		FilePath:         path,
		Size:             int64(len(in.Data)),
	}
	if err := p.docRepo.Create(doc); err != nil {
		p.log.WithError(err).Error("❌ Failed to store document metadata")
		return nil, nil
	}
	return &doc.ID, nil
}

// uniqueFormats drops repeated formats, keeping first-seen order. Each
// format is rendered to one output file.
func uniqueFormats(formats []docgen.Format) []docgen.Format {
	seen := make(map[docgen.Format]bool, len(formats))
	out := make([]docgen.Format, 0, len(formats))
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func (p *parseService) storeRender(id uuid.UUID, res docgen.Result) models.RenderInfo {
	info := models.RenderInfo{Format: string(res.Format)}
	if res.Err != nil {
		info.Error = res.Err.Error()
		return info
	}

	ext, err := p.generator.Extension(res.Format)
	if err == nil {
		info.Filename, err = p.storage.SaveOutput(id, string(res.Format), ext, res.Data)
	}
	if err != nil {
		info.Filename = ""
		info.Error = err.Error()
	}
	return info
}

// saveResult records the outcome when persistence is enabled. docID is nil
// when the upload metadata was not stored. Storage failures are logged and
// never fail the request.
func (p *parseService) saveResult(id uuid.UUID, docID *uuid.UUID, status models.ParseStatus, outcome *ParseOutcome, cause error) {
	if p.resultRepo == nil {
		return
	}

	result := &models.ParseResult{ID: id, DocumentID: docID, Status: status}
	if outcome != nil {
		result.Record = mustJSON(outcome.Record)
		result.Warnings = mustJSON(outcome.Warnings)
		result.Renders = mustJSON(outcome.Renders)
	}
	var invalid *structurer.InvalidError
	if errors.As(cause, &invalid) {
		result.InvalidField = mustJSON(invalid.Fields)
	}
	if cause != nil {
		msg := cause.Error()
		result.ErrorMessage = &msg
	}

	if err := p.resultRepo.Create(result); err != nil {
		p.log.WithError(err).WithField("parse_id", id.String()).Error("❌ Failed to store parse result")
	}
}

func mustJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
