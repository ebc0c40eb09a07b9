package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PeriodActive    = "active"
	PeriodStopped   = "stopped"
	PeriodCompleted = "completed"
	PeriodCancelled = "cancelled"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Nickname     *string   `db:"nickname" json:"nickname,omitempty"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	LastSignedIn time.Time `db:"last_signed_in" json:"last_signed_in"`
}

// Earning holds one recorded cash entry. Exactly one of the three currency
// columns is non-zero; all amounts are integer minor units.
type Earning struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	GbpAmount       int64     `db:"gbp_amount" json:"gbp_amount"`
	EurAmount       int64     `db:"eur_amount" json:"eur_amount"`
	UsdAmount       int64     `db:"usd_amount" json:"usd_amount"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	PaymentMethod   string    `db:"payment_method" json:"payment_method"`
	Description     *string   `db:"description" json:"description,omitempty"`
	Date            string    `db:"date" json:"date"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Period is a 7-day earning cycle. At most one active period exists per user.
type Period struct {
	ID         string     `db:"id" json:"id"`
	UserID     string     `db:"user_id" json:"user_id"`
	StartDate  time.Time  `db:"start_date" json:"start_date"`
	EndDate    *time.Time `db:"end_date" json:"end_date,omitempty"`
	CurrentDay int        `db:"current_day" json:"current_day"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// WeekSnapshot is the frozen aggregate of a closed week. Never mutated after
// creation; re-closing the same week overwrites it with identical values.
type WeekSnapshot struct {
	ID                    string    `db:"id" json:"id"`
	UserID                string    `db:"user_id" json:"user_id"`
	WeekStart             string    `db:"week_start" json:"week_start"`
	WeekEnd               string    `db:"week_end" json:"week_end"`
	TotalGbp              int64     `db:"total_gbp" json:"total_gbp"`
	TotalEur              int64     `db:"total_eur" json:"total_eur"`
	TotalUsd              int64     `db:"total_usd" json:"total_usd"`
	TotalDurationMinutes  int       `db:"total_duration_minutes" json:"total_duration_minutes"`
	DaysWorked            int       `db:"days_worked" json:"days_worked"`
	EntryCount            int       `db:"entry_count" json:"entry_count"`
	DetailsByDay          string    `db:"details_by_day" json:"details_by_day"`
	TotalsByPaymentMethod string    `db:"totals_by_payment_method" json:"totals_by_payment_method"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
}

type AuditLog struct {
	ID          string    `db:"id" json:"id"`
	ActorUserID *string   `db:"actor_user_id" json:"actor_user_id,omitempty"`
	Action      string    `db:"action" json:"action"`
	EntityType  string    `db:"entity_type" json:"entity_type"`
	EntityID    string    `db:"entity_id" json:"entity_id"`
	Data        string    `db:"data" json:"data"`
	IPAddress   string    `db:"ip_address" json:"ip_address"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
