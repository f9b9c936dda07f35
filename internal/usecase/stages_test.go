package usecase

import (
	"errors"
	"testing"

	"dyd/internal/domain"
	"dyd/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStep(t *testing.T) {
	tests := []struct {
		name    string
		cv      model.CV
		step    Step
		missing []string
	}{
		{"personal ok", model.CV{Personal: model.Personal{Name: "Ada", Email: "a@b.c"}}, StepPersonal, nil},
		{"personal blank", model.CV{Personal: model.Personal{Name: "  "}}, StepPersonal, []string{"personal.name", "personal.email"}},
		{"no experience", model.CV{}, StepExperience, []string{"experience"}},
		{
			"role gaps",
			model.CV{Experience: []model.Role{{Company: "X", Title: "Dev", Start: "2020", Summary: "Built things"}, {Company: "Y"}}},
			StepExperience,
			[]string{"experience[1].title", "experience[1].start", "experience[1].bullets"},
		},
		{"education school", model.CV{Education: []model.Education{{Degree: "BSc"}}}, StepEducation, []string{"education[0].school"}},
		{"blank skills", model.CV{Skills: []string{"", " "}}, StepSkills, []string{"skills"}},
		{"summary", model.CV{Summary: "\n"}, StepSummary, []string{"summary"}},
		{"unknown", model.CV{}, Step("photo"), []string{`unknown step "photo"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateStep(tt.cv, tt.step)
			assert.Equal(t, len(tt.missing) == 0, res.Valid)
			if len(tt.missing) == 0 {
				assert.Empty(t, res.Missing)
				return
			}
			assert.Equal(t, tt.missing, res.Missing)
		})
	}
}

func TestValidateWizard(t *testing.T) {
	cv := model.CV{
		Personal:   model.Personal{Name: "Ada", Email: "a@b.c"},
		Experience: []model.Role{{Company: "X", Title: "Dev", Start: "2020", Bullets: []string{"Shipped"}}},
		Education:  []model.Education{{School: "Uni"}},
		Skills:     []string{"Go"},
	}
	res := ValidateWizard(cv)
	require.Len(t, res, len(Steps))
	for i, r := range res {
		assert.Equal(t, Steps[i], r.Step)
	}
	assert.False(t, Complete(res), "summary is still missing")

	cv.Summary = "Engineer."
	assert.True(t, Complete(ValidateWizard(cv)))
}

func TestCheckReady(t *testing.T) {
	cv := model.CV{Personal: model.Personal{Name: "Ada", Email: "a@b.c"}}

	assert.NoError(t, checkReady(cv, domain.KindGenerate))

	err := checkReady(cv, domain.KindAnalyze)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"experience", "education", "skills"}, verr.Fields)
	assert.NotContains(t, verr.Fields, "summary")
}
