package domain

// Dashboard summarises a user's activity for the profile page.
type Dashboard struct {
	CVs           int               `json:"cvs"`
	Analyses      map[JobStatus]int `json:"analyses"`
	LatestScore   *int              `json:"latest_score,omitempty"`
	Applications  map[Column]int    `json:"applications"`
	Entitlement   *Entitlement      `json:"entitlement,omitempty"`
	RecentExports []Export          `json:"recent_exports"`
}
