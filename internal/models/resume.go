package models

// ResumeRecord is the validated output of the structurer. It is built once
// and never mutated afterwards.
type ResumeRecord struct {
	Personal        Personal        `json:"personal"`
	Experience      []Experience    `json:"experience" validate:"dive"`
	Education       []Education     `json:"education" validate:"dive"`
	Skills          []string        `json:"skills"`
	SkillCategories []SkillCategory `json:"skill_categories,omitempty" validate:"dive"`
	Projects        []Project       `json:"projects" validate:"dive"`
	Certifications  []Certification `json:"certifications" validate:"dive"`
	Unmapped        map[string]any  `json:"unmapped,omitempty"`
}

type Personal struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Phone    string   `json:"phone,omitempty"`
	Location string   `json:"location,omitempty"`
	Title    string   `json:"title,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Links    []string `json:"links,omitempty" validate:"omitempty,dive,url"`
}

type Experience struct {
	Employer string   `json:"employer" validate:"required"`
	Title    string   `json:"title" validate:"required"`
	Start    Date     `json:"start" validate:"required"`
	End      *Date    `json:"end,omitempty"`
	Location string   `json:"location,omitempty"`
	Bullets  []string `json:"bullets"`
}

type Education struct {
	Institution string   `json:"institution" validate:"required"`
	Degree      string   `json:"degree,omitempty"`
	Start       *Date    `json:"start,omitempty"`
	End         *Date    `json:"end,omitempty"`
	GPA         *float64 `json:"gpa,omitempty" validate:"omitempty,gte=0"`
	Location    string   `json:"location,omitempty"`
}

type SkillCategory struct {
	Name   string   `json:"name" validate:"required"`
	Skills []string `json:"skills" validate:"required,min=1"`
}

type Project struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url,omitempty" validate:"omitempty,url"`
}

type Certification struct {
	Name   string `json:"name" validate:"required"`
	Issuer string `json:"issuer,omitempty"`
	Date   *Date  `json:"date,omitempty"`
}

// Warning is a non-fatal issue found while structuring. Field is a path such
// as "experience[1].end".
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Section names in render order.
const (
	SectionPersonal       = "personal"
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionProjects       = "projects"
	SectionCertifications = "certifications"
)

var SectionOrder = []string{
	SectionPersonal,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionCertifications,
}
