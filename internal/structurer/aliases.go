package structurer

import (
	"strings"
	"unicode"

	"alfredoptarigan/resume-structurer/internal/models"
)

// canonicalKey folds a payload key to lower snake case:
// "WorkExperience", "work-experience" and "Work Experience" all become
// "work_experience".
func canonicalKey(key string) string {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(key))
	for i, r := range runes {
		switch {
		case r == ' ' || r == '-' || r == '.' || r == '/' || r == '_':
			b.WriteByte('_')
		case unicode.IsUpper(r):
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}

	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '_' })
	return strings.Join(parts, "_")
}

var sectionAliases = buildAliases(map[string][]string{
	models.SectionPersonal: {
		"personal", "personal_info", "personal_information", "personal_details",
		"contact", "contact_info", "contact_information", "contact_details",
		"basics", "header",
	},
	models.SectionExperience: {
		"experience", "work_experience", "employment", "employment_history",
		"work_history", "professional_experience", "experiences", "jobs",
		"work", "positions", "career",
	},
	models.SectionEducation: {
		"education", "schools", "academics", "education_history",
		"academic_background", "educations",
	},
	models.SectionSkills: {
		"skills", "technical_skills", "skill_set", "skillset", "competencies",
		"core_competencies", "key_skills",
	},
	models.SectionProjects: {
		"projects", "portfolio", "personal_projects", "side_projects",
	},
	models.SectionCertifications: {
		"certifications", "certificates", "licenses", "licenses_and_certifications",
		"certs", "certification",
	},
})

// personalFields are top-level keys that belong to the personal section when
// the payload flattens it.
var personalFields = map[string]bool{
	"name": true, "full_name": true,
	"email": true, "email_address": true, "e_mail": true,
	"phone": true, "phone_number": true, "mobile": true,
	"location": true, "address": true,
	"title": true, "headline": true,
	"summary": true, "objective": true, "professional_summary": true,
	"linkedin": true, "linked_in": true, "github": true, "git_hub": true,
	"website": true, "links": true,
}

func buildAliases(groups map[string][]string) map[string]string {
	out := make(map[string]string)
	for section, names := range groups {
		for _, name := range names {
			out[name] = section
		}
	}
	return out
}

// Entry field aliases, by canonical key. The first alias present wins.
var (
	personalNameKeys     = []string{"name", "full_name"}
	personalEmailKeys    = []string{"email", "email_address", "e_mail", "mail"}
	personalPhoneKeys    = []string{"phone", "phone_number", "mobile", "telephone"}
	personalLocationKeys = []string{"location", "address", "city"}
	personalTitleKeys    = []string{"title", "headline", "role"}
	personalSummaryKeys  = []string{"summary", "professional_summary", "objective", "about"}
	personalLinkKeys     = []string{"links", "urls", "profiles", "linkedin", "linked_in", "github", "git_hub", "website", "portfolio"}

	expEmployerKeys = []string{"employer", "company", "company_name", "organization", "organisation"}
	expTitleKeys    = []string{"title", "role", "position", "job_title"}
	expBulletKeys   = []string{"bullets", "achievements", "responsibilities", "highlights", "description", "details", "duties"}

	eduInstitutionKeys = []string{"institution", "school", "university", "college"}
	eduDegreeKeys      = []string{"degree", "qualification", "program", "study_type"}
	eduGPAKeys         = []string{"gpa", "grade", "score"}

	startKeys    = []string{"start", "start_date", "from", "started"}
	endKeys      = []string{"end", "end_date", "to", "until", "graduation_date", "graduation_year", "graduated"}
	rangeKeys    = []string{"dates", "date_range", "period", "duration", "years"}
	locationKeys = []string{"location", "city", "place"}

	projNameKeys = []string{"name", "title", "project_name"}
	projDescKeys = []string{"description", "summary", "details"}
	projTechKeys = []string{"technologies", "tech_stack", "stack", "tools", "skills", "keywords"}
	projURLKeys  = []string{"url", "link", "repo", "repository", "github"}

	certNameKeys   = []string{"name", "title", "certification"}
	certIssuerKeys = []string{"issuer", "authority", "organization", "issued_by", "provider"}
	certDateKeys   = []string{"date", "issued", "issue_date", "year", "obtained"}

	categoryNameKeys = []string{"name", "category", "title", "group"}
	categoryItemKeys = []string{"skills", "items", "keywords", "list", "values"}
)
