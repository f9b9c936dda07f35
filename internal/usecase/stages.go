package usecase

import (
	"fmt"
	"strings"

	"dyd/internal/domain"
	"dyd/internal/model"
)

// Step is one page of the CV wizard.
type Step string

const (
	StepPersonal   Step = "personal"
	StepExperience Step = "experience"
	StepEducation  Step = "education"
	StepSkills     Step = "skills"
	StepSummary    Step = "summary"
)

// Steps lists the wizard steps in order.
var Steps = []Step{StepPersonal, StepExperience, StepEducation, StepSkills, StepSummary}

// StepResult holds validation state for a step
type StepResult struct {
	Step    Step     `json:"step"`
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing"`
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// ValidateStep checks that the fields a step collects are filled in.
func ValidateStep(cv model.CV, step Step) StepResult {
	res := StepResult{Step: step, Missing: []string{}}
	miss := func(f string, args ...interface{}) {
		res.Missing = append(res.Missing, fmt.Sprintf(f, args...))
	}

	switch step {
	case StepPersonal:
		if blank(cv.Personal.Name) {
			miss("personal.name")
		}
		if blank(cv.Personal.Email) {
			miss("personal.email")
		}
	case StepExperience:
		if len(cv.Experience) == 0 {
			miss("experience")
		}
		for i, r := range cv.Experience {
			if blank(r.Company) {
				miss("experience[%d].company", i)
			}
			if blank(r.Title) {
				miss("experience[%d].title", i)
			}
			if blank(r.Start) {
				miss("experience[%d].start", i)
			}
			if blank(r.Summary) && len(r.Bullets) == 0 {
				miss("experience[%d].bullets", i)
			}
		}
	case StepEducation:
		if len(cv.Education) == 0 {
			miss("education")
		}
		for i, e := range cv.Education {
			if blank(e.School) {
				miss("education[%d].school", i)
			}
		}
	case StepSkills:
		n := 0
		for _, s := range cv.Skills {
			if !blank(s) {
				n++
			}
		}
		if n == 0 {
			miss("skills")
		}
	case StepSummary:
		if blank(cv.Summary) {
			miss("summary")
		}
	default:
		miss("unknown step %q", step)
	}

	res.Valid = len(res.Missing) == 0
	return res
}

// ValidateWizard runs every step in order.
func ValidateWizard(cv model.CV) []StepResult {
	out := make([]StepResult, 0, len(Steps))
	for _, s := range Steps {
		out = append(out, ValidateStep(cv, s))
	}
	return out
}

// Complete is true when every result is valid.
func Complete(results []StepResult) bool {
	for _, r := range results {
		if !r.Valid {
			return false
		}
	}
	return true
}

// requiredSteps lists what must be filled in before a job of the given kind
// is sent out. Generation writes the summary and bullets itself.
func requiredSteps(kind domain.JobKind) []Step {
	if kind == domain.KindGenerate {
		return []Step{StepPersonal}
	}
	return []Step{StepPersonal, StepExperience, StepEducation, StepSkills}
}

// checkReady returns a ValidationError naming every missing field.
func checkReady(cv model.CV, kind domain.JobKind) error {
	var missing []string
	for _, s := range requiredSteps(kind) {
		missing = append(missing, ValidateStep(cv, s).Missing...)
	}
	if len(missing) == 0 {
		return nil
	}
	return domain.NewValidationError("cv is incomplete: "+strings.Join(missing, ", "), missing...)
}
