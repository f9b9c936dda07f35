package model

// Go models that match schema/cv.schema.json. The wizard fills one step at a
// time, so every section is optional at the schema level; completeness is
// checked per step by the usecase layer.

type Link struct {
	Label string `json:"label,omitempty"`
	URL   string `json:"url"`
}

type Personal struct {
	Name     string `json:"name"`
	Headline string `json:"headline,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Links    []Link `json:"links,omitempty"`
}

type Role struct {
	Company  string   `json:"company"`
	Title    string   `json:"title"`
	Location string   `json:"location,omitempty"`
	Start    string   `json:"start,omitempty"`
	End      string   `json:"end,omitempty"`
	Current  bool     `json:"current,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Bullets  []string `json:"bullets,omitempty"`
}

// Period renders the role dates for display.
func (r Role) Period() string {
	end := r.End
	if r.Current {
		end = "Present"
	}
	switch {
	case r.Start != "" && end != "":
		return r.Start + " – " + end
	case r.Start != "":
		return r.Start
	}
	return end
}

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree,omitempty"`
	Field  string `json:"field,omitempty"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

func (e Education) Period() string {
	switch {
	case e.Start != "" && e.End != "":
		return e.Start + " – " + e.End
	case e.Start != "":
		return e.Start
	}
	return e.End
}

type Language struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
	URL    string `json:"url,omitempty"`
}

type CV struct {
	Personal       Personal        `json:"personal"`
	Summary        string          `json:"summary,omitempty"`
	Experience     []Role          `json:"experience,omitempty"`
	Education      []Education     `json:"education,omitempty"`
	Skills         []string        `json:"skills,omitempty"`
	Languages      []Language      `json:"languages,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
	Template       string          `json:"template,omitempty"`
	TargetJob      string          `json:"target_job,omitempty"`
}
