package services

import "fmt"

const extractionSchema = `{
  "contact": {
    "name": "Full Name",
    "email": "name@example.com",
    "phone": "(555) 123-4567",
    "location": "City, Country",
    "linkedin": "https://www.linkedin.com/in/handle"
  },
  "title": "Professional Title",
  "summary": "Two or three sentence professional summary",
  "technical_skills": {
    "Category Name From Resume": ["skill1", "skill2"]
  },
  "work_experience": [
    {
      "company": "Company Name",
      "location": "Location",
      "role": "Job Title",
      "dates": "MMM YYYY – Present",
      "achievements": ["Bullet point 1", "Bullet point 2"]
    }
  ],
  "education": [
    {
      "institution": "University Name",
      "location": "Location",
      "degree": "Degree Earned",
      "graduation_year": "YYYY",
      "gpa": "3.8"
    }
  ],
  "projects": [
    {"name": "Project", "description": "One line", "technologies": ["Go"], "url": "https://..."}
  ],
  "certifications": [
    {"name": "Certification", "issuer": "Issuer", "date": "MMM YYYY"}
  ]
}`

const extractionRules = `STRICT CONVERSION RULES:
1. Group technical skills under the category names used in the resume, in the same order.
2. Never rename categories. Use "Skills" when the resume has no categories.
3. Keep bullet points verbatim, without bullet symbols.
4. Use double quotes for all JSON strings.
5. Use dates shaped like "MMM YYYY – MMM YYYY", "MMM YYYY – Present" or "YYYY".
6. Omit sections the resume does not contain instead of inventing content.
7. Never add comments or explanations.
8. Return ONLY valid JSON.`

// BuildExtractionPrompt asks the model to return the résumé as one JSON
// object in the shape the structurer expects.
func BuildExtractionPrompt(resumeText string) string {
	return fmt.Sprintf(`Convert the following resume text into JSON using exactly this structure:

%s

%s

IMPORTANT: Preserve the exact order of skill categories as they appear in the input text.

Resume Text:
%s`, extractionSchema, extractionRules, resumeText)
}
