package models

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type ChoreStatus string

const (
	ChoreStatusPending ChoreStatus = "pending"
	ChoreStatusDone    ChoreStatus = "done"
)

type Frequency string

const (
	FrequencyOnce    Frequency = "once"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// User is the public projection handed to clients and to everything past the
// auth gate. It deliberately has no password field.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	FamilyID  *string   `json:"familyId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StoredUser carries the password verifier. Only the credential lookup used by
// login returns it; it must never be serialized.
type StoredUser struct {
	User
	PasswordHash string `json:"-"`
}

type Family struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	JoinCode  string    `json:"joinCode"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Chore struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Frequency    Frequency   `json:"frequency"`
	DueDate      *time.Time  `json:"dueDate"`
	Status       ChoreStatus `json:"status"`
	FamilyID     string      `json:"familyId"`
	AssignedToID *string     `json:"assignedToId"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// AssigneeSummary is the slice of a user echoed alongside a chore.
type AssigneeSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ChoreWithAssignee struct {
	Chore
	Assignee *AssigneeSummary `json:"assignee"`
}
