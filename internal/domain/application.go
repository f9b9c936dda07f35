package domain

import (
	"time"

	"github.com/google/uuid"
)

type Column string

const (
	ColumnWishlist  Column = "wishlist"
	ColumnApplied   Column = "applied"
	ColumnInterview Column = "interview"
	ColumnOffer     Column = "offer"
	ColumnRejected  Column = "rejected"
)

// Columns lists the board columns in display order.
var Columns = []Column{ColumnWishlist, ColumnApplied, ColumnInterview, ColumnOffer, ColumnRejected}

func (c Column) Valid() bool {
	for _, col := range Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Application is one card on the job-application board.
type Application struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	CVID      *uuid.UUID `json:"cv_id,omitempty"`
	Company   string     `json:"company"`
	Role      string     `json:"role"`
	URL       string     `json:"url,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Column    Column     `json:"column"`
	Rank      int        `json:"rank"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
