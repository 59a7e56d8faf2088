package structurer

import (
	"fmt"
	"strings"

	"alfredoptarigan/resume-structurer/internal/models"
)

// IntermediateRecord is the section-mapped, loosely typed form of a payload.
// Section values keep the payload's shapes: string, json.Number, bool, nil,
// []any or *Object.
type IntermediateRecord struct {
	Sections map[string]any
	// Unmapped holds every top-level key that did not map to a section,
	// under its original spelling.
	Unmapped *Object
	// Notes are repairs and merges applied while normalizing.
	Notes []models.Warning
}

func (ir IntermediateRecord) Section(name string) (any, bool) {
	v, ok := ir.Sections[name]
	return v, ok
}

type Normalizer struct {
	repairs []Repair
}

func NewNormalizer(repairs []Repair) *Normalizer {
	if repairs == nil {
		repairs = DefaultRepairs
	}
	return &Normalizer{repairs: repairs}
}

// Normalize parses a raw extraction payload. A payload that fails to parse
// is repaired once and parsed again; if that also fails the result is
// ErrUnparseable.
func (n *Normalizer) Normalize(raw string) (IntermediateRecord, error) {
	if strings.TrimSpace(raw) == "" {
		return IntermediateRecord{}, fmt.Errorf("%w: empty payload", ErrUnparseable)
	}

	var notes []models.Warning

	obj, err := decodeObject(raw)
	if err != nil {
		repaired, applied := applyRepairs(raw, n.repairs)
		obj, err = decodeObject(repaired)
		if err != nil {
			return IntermediateRecord{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
		}
		if len(applied) > 0 {
			notes = append(notes, models.Warning{
				Field:   "(payload)",
				Message: "repaired malformed payload: " + strings.Join(applied, ", "),
			})
		}
	}
	notes = append(notes, repeatedKeys(obj, "")...)

	ir := IntermediateRecord{
		Sections: make(map[string]any),
		Unmapped: NewObject(),
		Notes:    notes,
	}

	type hoisted struct {
		key string
		val any
	}
	var personal []hoisted

	for _, key := range obj.Keys() {
		val, _ := obj.Get(key)
		ck := canonicalKey(key)

		if section, ok := sectionAliases[ck]; ok {
			ir.mergeSection(section, key, val)
			continue
		}
		if personalFields[ck] {
			personal = append(personal, hoisted{key: key, val: val})
			continue
		}
		ir.Unmapped.Set(key, val)
	}

	// Hoisted fields never override an explicit personal section.
	for _, h := range personal {
		p, ok := ir.Sections[models.SectionPersonal].(*Object)
		if !ok {
			if _, exists := ir.Sections[models.SectionPersonal]; exists {
				ir.Unmapped.Set(h.key, h.val)
				continue
			}
			p = NewObject()
			ir.Sections[models.SectionPersonal] = p
		}
		if !p.SetIfAbsent(canonicalKey(h.key), canonicalizeValue(h.val)) {
			ir.Unmapped.Set(h.key, h.val)
			ir.note(models.SectionPersonal, fmt.Sprintf("top-level %q conflicts with personal section, kept under unmapped", h.key))
		}
	}

	return ir, nil
}

func (ir *IntermediateRecord) note(field, msg string) {
	ir.Notes = append(ir.Notes, models.Warning{Field: field, Message: msg})
}

func (ir *IntermediateRecord) mergeSection(section, origKey string, raw any) {
	val := coerceShape(section, canonicalizeSection(section, raw))

	existing, ok := ir.Sections[section]
	if !ok {
		ir.Sections[section] = val
		return
	}

	switch e := existing.(type) {
	case []any:
		if l, ok := val.([]any); ok {
			ir.Sections[section] = append(e, l...)
			ir.note(section, fmt.Sprintf("merged entries from %q", origKey))
			return
		}
	case *Object:
		if o, ok := val.(*Object); ok {
			for _, k := range o.Keys() {
				v, _ := o.Get(k)
				e.SetIfAbsent(k, v)
			}
			ir.note(section, fmt.Sprintf("merged fields from %q", origKey))
			return
		}
	}

	ir.Unmapped.Set(origKey, raw)
	ir.note(section, fmt.Sprintf("%q has a different shape than the existing section, kept under unmapped", origKey))
}

// canonicalizeSection folds nested keys to canonical form. The keys of a
// skills object are category names and keep their spelling.
func canonicalizeSection(section string, v any) any {
	if o, ok := v.(*Object); ok && section == models.SectionSkills {
		out := NewObject()
		for _, k := range o.Keys() {
			val, _ := o.Get(k)
			out.SetIfAbsent(strings.TrimSpace(k), canonicalizeValue(val))
		}
		return out
	}
	return canonicalizeValue(v)
}

func canonicalizeValue(v any) any {
	switch t := v.(type) {
	case *Object:
		out := NewObject()
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			out.SetIfAbsent(canonicalKey(k), canonicalizeValue(val))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = canonicalizeValue(item)
		}
		return out
	}
	return v
}

// coerceShape turns string-encoded values into structure and wraps single
// entries where a list section is expected.
func coerceShape(section string, v any) any {
	if s, ok := v.(string); ok {
		if decoded, err := decodeDocument(strings.TrimSpace(s)); err == nil {
			switch decoded.(type) {
			case []any, *Object:
				v = canonicalizeSection(section, decoded)
			}
		}
	}

	switch section {
	case models.SectionPersonal:
		return v
	case models.SectionSkills:
		if s, ok := v.(string); ok {
			return toAnySlice(splitList(s, listSeparators))
		}
		return v
	default:
		if o, ok := v.(*Object); ok {
			return []any{o}
		}
		return v
	}
}

func toAnySlice(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

const listSeparators = ",;|\n"

// splitList splits on any of seps and drops empty items.
func splitList(s string, seps string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune(seps, r) }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
