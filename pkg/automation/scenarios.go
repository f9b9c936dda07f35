package automation

// Kind selects a scenario.
type Kind string

const (
	Analyze  Kind = "analyze"
	Generate Kind = "generate"
	Optimize Kind = "optimize"
)

// Instructions is the prompt each scenario hands to its language model. The
// scenario posts the model output back verbatim, so every prompt asks for a
// single JSON object.
func Instructions(kind Kind) string {
	switch kind {
	case Analyze:
		return `Evaluate the CV the way an Applicant Tracking System would.
Respond with ONLY a single JSON object and nothing else:
{"score": <integer 0-100>, "strengths": [string], "weaknesses": [string], "suggestions": [string], "keywords": [string]}`
	case Generate:
		return `Write polished CV content from the candidate's raw data.
Respond with ONLY a single JSON object and nothing else:
{"summary": "80-330 characters", "headline": "50-150 characters", "experience": [{"company": string, "title": string, "bullets": [string]}]}`
	case Optimize:
		return `Tailor the CV to the job description without inventing experience.
Respond with ONLY a single JSON object and nothing else:
{"score": <integer 0-100 match with the job>, "missing_keywords": [string], "summary": string, "experience": [{"company": string, "title": string, "bullets": [string]}]}`
	}
	return ""
}
