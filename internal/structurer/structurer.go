// Package structurer turns loosely shaped résumé payloads from an extraction
// model into validated records.
//
// Structuring runs in two stages. The Normalizer parses and repairs the raw
// text and maps keys onto known sections; the Validator coerces fields,
// enforces required fields and produces the final models.ResumeRecord.
package structurer

import (
	"alfredoptarigan/resume-structurer/internal/models"
)

type Config struct {
	// DateLayouts are Go time layouts tried in order.
	DateLayouts []string
	// PresentTokens mark an open-ended end date ("Present", "Current").
	PresentTokens []string
	// Repairs run once, in order, when the payload does not parse.
	Repairs []Repair
}

func DefaultConfig() Config {
	return Config{
		DateLayouts: []string{
			"2006-01-02", "2006-01", "2006",
			"01/02/2006", "02.01.2006", "01/2006", "2006/01",
			"Jan 2006", "January 2006", "Jan. 2006",
			"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006",
		},
		PresentTokens: []string{"present", "current", "now", "ongoing", "to date"},
		Repairs:       DefaultRepairs,
	}
}

type Structurer struct {
	normalizer *Normalizer
	validator  *Validator
}

func New(cfg Config) (*Structurer, error) {
	v, err := NewValidator(cfg)
	if err != nil {
		return nil, err
	}
	return &Structurer{
		normalizer: NewNormalizer(cfg.Repairs),
		validator:  v,
	}, nil
}

// Structure converts a raw extraction payload into a record. Errors satisfy
// errors.Is(err, ErrStructuring): ErrUnparseable for garbage input, or an
// *InvalidError when the name or email is missing. Warnings are returned
// alongside an *InvalidError too.
func (s *Structurer) Structure(raw string) (*models.ResumeRecord, []models.Warning, error) {
	ir, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, []models.Warning{}, err
	}

	rec, warnings, err := s.validator.Validate(ir)
	if err != nil {
		return nil, warnings, err
	}
	return &rec, warnings, nil
}

// Check validates a record built elsewhere.
func (s *Structurer) Check(rec *models.ResumeRecord) error {
	return s.validator.CheckRecord(rec)
}
