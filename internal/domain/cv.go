package domain

import (
	"time"

	"dyd/internal/model"

	"github.com/google/uuid"
)

// CVRecord is a persisted wizard draft.
type CVRecord struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Data      model.CV  `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Export is an uploaded rendering of a CV.
type Export struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CVID      uuid.UUID `json:"cv_id"`
	Format    string    `json:"format"`
	Mode      string    `json:"mode,omitempty"`
	Template  string    `json:"template"`
	Pages     int       `json:"pages"`
	Size      int       `json:"size"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
