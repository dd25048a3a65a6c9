// Package models defines the data exchanged between the carbuyer client and
// its backend.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	MinPreferenceYear = 2000
	MaxPreferenceYear = 2030
)

var (
	ErrInvalidYear   = fmt.Errorf("year must be between %d and %d", MinPreferenceYear, MaxPreferenceYear)
	ErrMakeRequired  = errors.New("make is required")
	ErrModelRequired = errors.New("model is required")
)

// User is the authenticated account. Preferences is nil until onboarding
// is completed; once set it is the locked target vehicle.
type User struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	CreatedAt   time.Time    `json:"createdAt"`
	InboxEmail  string       `json:"inboxEmail,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

func (u *User) HasPreferences() bool {
	return u != nil && u.Preferences != nil
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Preferences != nil {
		p := *u.Preferences
		c.Preferences = &p
	}
	return &c
}

// Preferences is the target vehicle of the user.
type Preferences struct {
	Year  int    `json:"year"`
	Make  string `json:"make"`
	Model string `json:"model"`
}

func (p Preferences) Validate() error {
	if p.Year < MinPreferenceYear || p.Year > MaxPreferenceYear {
		return ErrInvalidYear
	}
	if strings.TrimSpace(p.Make) == "" {
		return ErrMakeRequired
	}
	if strings.TrimSpace(p.Model) == "" {
		return ErrModelRequired
	}
	return nil
}

func (p Preferences) String() string {
	return fmt.Sprintf("%d %s %s", p.Year, p.Make, p.Model)
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type GmailStatus struct {
	Connected  bool   `json:"connected"`
	GmailEmail string `json:"gmailEmail,omitempty"`
}
