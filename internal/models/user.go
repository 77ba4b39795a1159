package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// AccountType selects the profile variant and the route-guard allow-lists
// that apply to a user.
type AccountType string

const (
	AccountStudent AccountType = "student"
	AccountTeacher AccountType = "teacher"
	AccountAdmin   AccountType = "admin"
)

// ConsentStatus tracks the parental-consent gate on student accounts.
type ConsentStatus string

const (
	ConsentPending  ConsentStatus = "pending"
	ConsentApproved ConsentStatus = "approved"
	ConsentDenied   ConsentStatus = "denied"
)

// Date is a calendar date serialised as YYYY-MM-DD on the wire.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", raw, err)
	}
	d.Time = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v
		return nil
	case []byte:
		parsed, err := time.Parse(dateLayout, string(v))
		if err != nil {
			return err
		}
		d.Time = parsed
		return nil
	case string:
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return err
		}
		d.Time = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// Age returns full years elapsed at the reference date.
func (d Date) Age(at time.Time) int {
	age := at.Year() - d.Year()
	if at.Month() < d.Month() || (at.Month() == d.Month() && at.Day() < d.Day()) {
		age--
	}
	return age
}

// User represents an application user stored in the users table.
type User struct {
	ID           int64       `db:"id" json:"id"`
	Email        string      `db:"email" json:"email"`
	PasswordHash string      `db:"password_hash" json:"-"`
	FirstName    string      `db:"first_name" json:"first_name"`
	LastName     string      `db:"last_name" json:"last_name"`
	AccountType  AccountType `db:"account_type" json:"user_type"`
	Active       bool        `db:"active" json:"-"`
	LastLogin    *time.Time  `db:"last_login" json:"-"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"-"`
}

// FullName joins first and last name for emails and token claims.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// StudentProfile holds student-specific data (one row per student user).
type StudentProfile struct {
	UserID        int64         `db:"user_id" json:"-"`
	Grade         int           `db:"grade" json:"grade"`
	BirthDate     Date          `db:"birth_date" json:"birth_date"`
	ParentEmail   string        `db:"parent_email" json:"-"`
	ConsentStatus ConsentStatus `db:"consent_status" json:"consent_status"`
	ConsentDate   *time.Time    `db:"consent_date" json:"-"`
}

// TeacherProfile holds teacher-specific data (one row per teacher user).
type TeacherProfile struct {
	UserID         int64   `db:"user_id" json:"-"`
	ReferralCode   string  `db:"referral_code" json:"referral_code"`
	SchoolName     string  `db:"school_name" json:"school_name"`
	CommissionRate float64 `db:"commission_rate" json:"commission_rate"`
}

// Profile is the account-type-keyed variant attached to a user. Exactly
// one side is populated; admins carry none.
type Profile struct {
	Student *StudentProfile
	Teacher *TeacherProfile
}

// MarshalJSON emits the populated variant, or null for admins.
func (p *Profile) MarshalJSON() ([]byte, error) {
	switch {
	case p == nil:
		return []byte("null"), nil
	case p.Student != nil:
		return json.Marshal(p.Student)
	case p.Teacher != nil:
		return json.Marshal(p.Teacher)
	default:
		return []byte("null"), nil
	}
}

// UserInfo is the user record returned by login, registration and /auth/me/.
type UserInfo struct {
	ID          int64       `json:"id"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	AccountType AccountType `json:"user_type"`
	Profile     *Profile    `json:"profile"`
	CreatedAt   time.Time   `json:"created_at"`
}
