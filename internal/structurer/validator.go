package structurer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"

	"alfredoptarigan/resume-structurer/internal/models"
)

// Validator turns an IntermediateRecord into a ResumeRecord. Field-level
// problems become warnings; a missing or invalid name or email is fatal.
type Validator struct {
	dates    *dateParser
	validate *validator.Validate
	schema   *gojsonschema.Schema
}

func NewValidator(cfg Config) (*Validator, error) {
	schema, err := compileRecordSchema()
	if err != nil {
		return nil, err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		dates:    newDateParser(cfg.DateLayouts, cfg.PresentTokens),
		validate: validate,
		schema:   schema,
	}, nil
}

type warnings struct {
	list []models.Warning
}

func (w *warnings) add(field, format string, args ...any) {
	w.list = append(w.list, models.Warning{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *Validator) Validate(ir IntermediateRecord) (models.ResumeRecord, []models.Warning, error) {
	w := &warnings{list: append([]models.Warning{}, ir.Notes...)}

	personal, invalid, err := v.personal(ir, w)
	if err != nil {
		return models.ResumeRecord{}, w.list, err
	}

	rec := models.ResumeRecord{
		Personal:       personal,
		Experience:     v.experience(v.entries(ir, models.SectionExperience, w), w),
		Education:      v.education(v.entries(ir, models.SectionEducation, w), w),
		Projects:       v.projects(v.entries(ir, models.SectionProjects, w), w),
		Certifications: v.certifications(v.entries(ir, models.SectionCertifications, w), w),
	}
	rec.Skills, rec.SkillCategories = v.skills(ir, w)

	if ir.Unmapped.Len() > 0 {
		rec.Unmapped, _ = toPlain(ir.Unmapped).(map[string]any)
	}

	if len(invalid) > 0 {
		return models.ResumeRecord{}, w.list, &InvalidError{Fields: invalid}
	}
	return rec, w.list, nil
}

// CheckRecord validates a record that did not come through Validate, such as
// one posted directly for rendering.
func (v *Validator) CheckRecord(rec *models.ResumeRecord) error {
	var fields []string

	if err := v.validate.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("failed to validate record: %w", err)
		}
		for _, fe := range verrs {
			ns := fe.Namespace()
			if i := strings.IndexByte(ns, '.'); i >= 0 {
				ns = ns[i+1:]
			}
			fields = append(fields, ns)
		}
	}

	for i, e := range rec.Experience {
		if e.End != nil && e.End.Before(e.Start) {
			fields = append(fields, fmt.Sprintf("experience[%d].end", i))
		}
	}

	seen := make(map[string]bool)
	for _, s := range rec.Skills {
		key := strings.ToLower(s)
		if seen[key] {
			fields = append(fields, "skills")
			break
		}
		seen[key] = true
	}

	if len(fields) == 0 {
		return nil
	}
	sort.Strings(fields)
	return &InvalidError{Fields: fields}
}

func (v *Validator) personal(ir IntermediateRecord, w *warnings) (models.Personal, []string, error) {
	obj, ok := ir.Sections[models.SectionPersonal].(*Object)
	if !ok {
		if raw, exists := ir.Sections[models.SectionPersonal]; exists && raw != nil {
			w.add(models.SectionPersonal, "expected an object, section ignored")
		}
		obj = NewObject()
	}

	p := models.Personal{
		Name:     collapseSpace(lookupString(obj, personalNameKeys)),
		Email:    strings.TrimPrefix(lookupString(obj, personalEmailKeys), "mailto:"),
		Location: lookupString(obj, personalLocationKeys),
		Title:    lookupString(obj, personalTitleKeys),
		Summary:  lookupString(obj, personalSummaryKeys),
	}

	doc := map[string]any{}
	if p.Name != "" {
		doc["name"] = p.Name
	}
	if p.Email != "" {
		doc["email"] = p.Email
	}
	invalid, err := schemaFailures(v.schema, map[string]any{"personal": doc})
	if err != nil {
		return models.Personal{}, nil, err
	}

	if p.Email != "" && !slices.Contains(invalid, "personal.email") {
		if addr, err := mail.ParseAddress(p.Email); err == nil {
			p.Email = addr.Address
		}
		if v.validate.Var(p.Email, "email") != nil {
			invalid = append(invalid, "personal.email")
			sort.Strings(invalid)
		}
	}

	if raw := lookupString(obj, personalPhoneKeys); raw != "" {
		phone, ok := normalizePhone(raw)
		if !ok {
			w.add("personal.phone", "unrecognized phone number %q kept as written", raw)
		}
		p.Phone = phone
	}

	p.Links = v.links(obj, w)

	return p, invalid, nil
}

func (v *Validator) links(obj *Object, w *warnings) []string {
	var raw []string
	for _, key := range personalLinkKeys {
		val, ok := obj.Get(key)
		if !ok {
			continue
		}
		if o, isObj := val.(*Object); isObj {
			for _, k := range o.Keys() {
				item, _ := o.Get(k)
				raw = append(raw, stringList(item, " ,;|\n")...)
			}
			continue
		}
		raw = append(raw, stringList(val, " ,;|\n")...)
	}

	var links []string
	seen := make(map[string]bool)
	for _, l := range raw {
		u := normalizeURL(l)
		if v.validate.Var(u, "url") != nil {
			w.add("personal.links", "dropped invalid link %q", l)
			continue
		}
		if key := strings.ToLower(u); !seen[key] {
			seen[key] = true
			links = append(links, u)
		}
	}
	return links
}

// entries returns the section's list with non-object items replaced by nil,
// so indexes in warnings match the payload.
func (v *Validator) entries(ir IntermediateRecord, section string, w *warnings) []*Object {
	raw, ok := ir.Sections[section]
	if !ok || raw == nil {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		w.add(section, "expected a list of entries, section ignored")
		return nil
	}

	out := make([]*Object, len(list))
	for i, item := range list {
		o, ok := item.(*Object)
		if !ok {
			w.add(fmt.Sprintf("%s[%d]", section, i), "expected an object, entry dropped")
			continue
		}
		out[i] = o
	}
	return out
}

func (v *Validator) experience(entries []*Object, w *warnings) []models.Experience {
	out := []models.Experience{}
	seen := make(map[string]bool)

	for i, o := range entries {
		if o == nil {
			continue
		}
		path := fmt.Sprintf("%s[%d]", models.SectionExperience, i)

		e := models.Experience{
			Employer: collapseSpace(lookupString(o, expEmployerKeys)),
			Title:    collapseSpace(lookupString(o, expTitleKeys)),
			Location: lookupString(o, locationKeys),
			Bullets:  bulletList(lookupValue(o, expBulletKeys)),
		}
		start, end := v.entryDates(o, path, false, w)
		if start != nil {
			e.Start = *start
		}
		e.End = end

		if missing := v.failedFields(e); len(missing) > 0 {
			w.add(path, "missing required %s, entry dropped", strings.Join(missing, ", "))
			continue
		}
		if e.End != nil && e.End.Before(e.Start) {
			w.add(path, "end %s precedes start %s, entry dropped", e.End, e.Start)
			continue
		}
		if dupKey(e, seen) {
			w.add(path, "duplicate entry dropped")
			continue
		}
		out = append(out, e)
	}
	return out
}

func (v *Validator) education(entries []*Object, w *warnings) []models.Education {
	out := []models.Education{}
	seen := make(map[string]bool)

	for i, o := range entries {
		if o == nil {
			continue
		}
		path := fmt.Sprintf("%s[%d]", models.SectionEducation, i)

		e := models.Education{
			Institution: collapseSpace(lookupString(o, eduInstitutionKeys)),
			Degree:      collapseSpace(lookupString(o, eduDegreeKeys)),
			Location:    lookupString(o, locationKeys),
		}
		e.Start, e.End = v.entryDates(o, path, true, w)

		if raw, ok := lookupAny(o, eduGPAKeys); ok {
			gpa, ok := parseGPA(raw)
			if !ok {
				w.add(path+".gpa", "unrecognized GPA %v", raw)
			}
			e.GPA = gpa
		}

		if missing := v.failedFields(e); len(missing) > 0 {
			w.add(path, "missing required %s, entry dropped", strings.Join(missing, ", "))
			continue
		}
		if dupKey(e, seen) {
			w.add(path, "duplicate entry dropped")
			continue
		}
		out = append(out, e)
	}

	// Resolved end dates first, newest to oldest; the rest keep their order.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].End, out[j].End
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Order(*b) > 0
	})
	return out
}

func (v *Validator) projects(entries []*Object, w *warnings) []models.Project {
	out := []models.Project{}
	seen := make(map[string]bool)

	for i, o := range entries {
		if o == nil {
			continue
		}
		path := fmt.Sprintf("%s[%d]", models.SectionProjects, i)

		p := models.Project{
			Name:         collapseSpace(lookupString(o, projNameKeys)),
			Description:  lookupString(o, projDescKeys),
			Technologies: dedupeFold(stringList(lookupValue(o, projTechKeys), listSeparators), nil),
		}
		if raw := lookupString(o, projURLKeys); raw != "" {
			u := normalizeURL(raw)
			if v.validate.Var(u, "url") != nil {
				w.add(path+".url", "dropped invalid URL %q", raw)
			} else {
				p.URL = u
			}
		}

		if missing := v.failedFields(p); len(missing) > 0 {
			w.add(path, "missing required %s, entry dropped", strings.Join(missing, ", "))
			continue
		}
		if dupKey(p, seen) {
			w.add(path, "duplicate entry dropped")
			continue
		}
		out = append(out, p)
	}
	return out
}

func (v *Validator) certifications(entries []*Object, w *warnings) []models.Certification {
	out := []models.Certification{}
	seen := make(map[string]bool)

	for i, o := range entries {
		if o == nil {
			continue
		}
		path := fmt.Sprintf("%s[%d]", models.SectionCertifications, i)

		c := models.Certification{
			Name:   collapseSpace(lookupString(o, certNameKeys)),
			Issuer: collapseSpace(lookupString(o, certIssuerKeys)),
		}
		if raw, ok := lookupAny(o, certDateKeys); ok {
			c.Date = v.date(raw, path+".date", false, w)
		}

		if missing := v.failedFields(c); len(missing) > 0 {
			w.add(path, "missing required %s, entry dropped", strings.Join(missing, ", "))
			continue
		}
		if dupKey(c, seen) {
			w.add(path, "duplicate entry dropped")
			continue
		}
		out = append(out, c)
	}
	return out
}

// skills flattens the skills section. Grouped payloads also produce
// categories; a skill is kept only where it first appears.
func (v *Validator) skills(ir IntermediateRecord, w *warnings) ([]string, []models.SkillCategory) {
	flat := []string{}
	var categories []models.SkillCategory
	var uncategorized []string
	seen := make(map[string]bool)

	addCategory := func(name string, items []string) {
		kept := dedupeFold(items, seen)
		flat = append(flat, kept...)
		if name = collapseSpace(name); name != "" && len(kept) > 0 {
			categories = append(categories, models.SkillCategory{Name: name, Skills: kept})
		}
	}

	raw, ok := ir.Sections[models.SectionSkills]
	if !ok || raw == nil {
		return flat, nil
	}

	switch t := raw.(type) {
	case []any:
		for i, item := range t {
			o, isObj := item.(*Object)
			if !isObj {
				if s, ok := scalarString(item); ok {
					kept := dedupeFold([]string{s}, seen)
					flat = append(flat, kept...)
					uncategorized = append(uncategorized, kept...)
				}
				continue
			}
			name := lookupString(o, categoryNameKeys)
			items := stringList(lookupValue(o, categoryItemKeys), listSeparators)
			if name == "" && o.Len() == 1 {
				key := o.Keys()[0]
				val, _ := o.Get(key)
				name, items = key, stringList(val, listSeparators)
			}
			if len(items) == 0 {
				w.add(fmt.Sprintf("skills[%d]", i), "skill group has no skills, ignored")
				continue
			}
			addCategory(name, items)
		}
	case *Object:
		for _, key := range t.Keys() {
			val, _ := t.Get(key)
			addCategory(key, stringList(val, listSeparators))
		}
	default:
		w.add(models.SectionSkills, "expected a list or groups of skills, section ignored")
	}

	if len(categories) > 0 && len(uncategorized) > 0 {
		categories = append(categories, models.SkillCategory{Name: "Other", Skills: uncategorized})
	}
	return flat, categories
}

// entryDates resolves start and end from explicit fields or a combined range.
// A lone date in a range field is an end for education and a start otherwise.
func (v *Validator) entryDates(o *Object, path string, loneIsEnd bool, w *warnings) (start, end *models.Date) {
	startRaw, hasStart := lookupAny(o, startKeys)
	endRaw, hasEnd := lookupAny(o, endKeys)

	if !hasStart && !hasEnd {
		if r := lookupString(o, rangeKeys); r != "" {
			s, e, ranged := splitRange(r)
			switch {
			case ranged:
				startRaw, hasStart = s, s != ""
				endRaw, hasEnd = e, e != ""
			case loneIsEnd:
				endRaw, hasEnd = s, true
			default:
				startRaw, hasStart = s, true
			}
		}
	}

	if hasStart {
		start = v.date(startRaw, path+".start", false, w)
	}
	if hasEnd {
		end = v.date(endRaw, path+".end", true, w)
	}
	return start, end
}

// date parses a payload date. Present-tokens yield nil when allowed.
func (v *Validator) date(raw any, field string, allowPresent bool, w *warnings) *models.Date {
	s, ok := scalarString(raw)
	if !ok {
		if raw != nil {
			w.add(field, "expected a date, got %T", raw)
		}
		return nil
	}
	if s == "" {
		return nil
	}
	if allowPresent && v.dates.isPresent(s) {
		return nil
	}
	d, ok := v.dates.parse(s)
	if !ok {
		w.add(field, "unrecognized date %q", s)
		return nil
	}
	return &d
}

// failedFields returns the json names of fields failing their struct tags.
func (v *Validator) failedFields(entry any) []string {
	err := v.validate.Struct(entry)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

func dupKey(entry any, seen map[string]bool) bool {
	b, err := json.Marshal(entry)
	if err != nil {
		return false
	}
	key := string(b)
	if seen[key] {
		return true
	}
	seen[key] = true
	return false
}

// lookupAny returns the first alias present with a non-null value.
func lookupAny(o *Object, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := o.Get(k); ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func lookupValue(o *Object, keys []string) any {
	v, _ := lookupAny(o, keys)
	return v
}

func lookupString(o *Object, keys []string) string {
	v, ok := lookupAny(o, keys)
	if !ok {
		return ""
	}
	s, _ := scalarString(v)
	return s
}

// stringList accepts a list, a JSON-encoded list or a delimited string.
func stringList(raw any, seps string) []string {
	switch t := raw.(type) {
	case nil:
		return nil
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := scalarString(item); ok && s != "" {
				out = append(out, collapseSpace(stripBullet(s)))
			}
		}
		return out
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(s, "[") {
			if decoded, err := decodeDocument(s); err == nil {
				if list, ok := decoded.([]any); ok {
					return stringList(list, seps)
				}
			}
		}
		parts := splitList(s, seps)
		for i, p := range parts {
			parts[i] = collapseSpace(stripBullet(p))
		}
		return parts
	}
	if s, ok := scalarString(raw); ok && s != "" {
		return []string{s}
	}
	return nil
}

// bulletList splits only on line breaks; bullets may contain commas.
func bulletList(raw any) []string {
	items := stringList(raw, "\n")
	out := []string{}
	for _, item := range items {
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func stripBullet(s string) string {
	s = strings.TrimSpace(s)
	for {
		trimmed := strings.TrimLeftFunc(s, isBulletGlyph)
		trimmed = strings.TrimPrefix(trimmed, "- ")
		trimmed = strings.TrimPrefix(trimmed, "* ")
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// dedupeFold drops case-insensitive duplicates keeping the first spelling.
// seen may be shared across calls; nil starts fresh.
func dedupeFold(items []string, seen map[string]bool) []string {
	if seen == nil {
		seen = make(map[string]bool)
	}
	out := []string{}
	for _, item := range items {
		item = collapseSpace(item)
		key := strings.ToLower(item)
		if item == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// normalizePhone keeps a leading "+" and the digits. Numbers outside 7–15
// digits are returned trimmed and reported as not ok.
func normalizePhone(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	if strings.HasPrefix(raw, "+") {
		b.WriteByte('+')
	}
	digits := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			digits++
		}
	}
	if digits < 7 || digits > 15 {
		return raw, false
	}
	return b.String(), true
}

func parseGPA(raw any) (*float64, bool) {
	s, ok := scalarString(raw)
	if !ok {
		return nil, false
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return nil, false
	}
	return &f, true
}

func normalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && !strings.Contains(s, "://") {
		s = "https://" + s
	}
	return s
}
