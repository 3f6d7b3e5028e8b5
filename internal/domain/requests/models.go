package requests

import "time"

const (
	TypeVacation = "vacation"
	TypeSick     = "sick"
	TypePersonal = "personal"
	TypeOther    = "other"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var Types = []string{TypeVacation, TypeSick, TypePersonal, TypeOther}

type TimeOffRequest struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Username      string    `json:"username"`
	Type          string    `json:"type"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	Reason        string    `json:"reason"`
	Status        string    `json:"status"`
	ReviewedBy    *string   `json:"reviewedBy,omitempty"`
	ReviewComment string    `json:"reviewComment"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
