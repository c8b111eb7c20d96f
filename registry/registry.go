// Package registry accepts completed registrations and assigns each patient
// a daily token and an appointment slot.
//
// Tokens are numbered per hospital per day starting at 1. A day has
// SlotsPerDay one-hour slots beginning at 07:30, each seating
// PatientsPerSlot patients. Tokens past the last slot wrap to the first.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tbxark/voiceform/form"
)

const (
	SlotsPerDay       = 13
	PatientsPerSlot   = 60
	MinutesPerPatient = 5

	firstSlotStart = 7*time.Hour + 30*time.Minute
	slotLength     = time.Hour
	dayLayout      = "2006-01-02"
)

var ErrNotFound = errors.New("registry: submission not found")

// Receipt is the outcome of a submission.
type Receipt struct {
	ID            string    `json:"id"`
	Hospital      string    `json:"hospital"`
	Day           string    `json:"day"`
	Patient       string    `json:"patient"`
	Token         int       `json:"token"`
	SlotIndex     int       `json:"slot_index"`
	TimeRange     string    `json:"time_range"`
	Position      int       `json:"position"`
	EstimatedWait int       `json:"estimated_wait_minutes"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// Registry stores submitted registrations.
type Registry interface {
	Submit(ctx context.Context, reg form.Registration) (*Receipt, error)
	Get(ctx context.Context, id string) (*Receipt, form.Registration, error)
	Close() error
}

// Opts configures a registry backend.
type Opts struct {
	DSN      string
	Hospital string
	Now      func() time.Time
}

type Option func(*Opts)

// WithDSN sets the SQLite database path.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

func WithHospital(name string) Option {
	return func(o *Opts) { o.Hospital = name }
}

// WithClock sets the time source used for the token day and timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

func buildOpts(opts []Option) Opts {
	cfg := Opts{Hospital: "default", Now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return cfg
}

// Slot returns the zero-based slot index, the one-based position within the
// slot and the estimated wait in minutes for token.
func Slot(token int) (index, position, wait int) {
	if token < 1 {
		token = 1
	}
	index = ((token - 1) / PatientsPerSlot) % SlotsPerDay
	position = ((token - 1) % PatientsPerSlot) + 1
	wait = (position - 1) * MinutesPerPatient
	return index, position, wait
}

// SlotRange formats the clock range of a slot, e.g. "07:30 AM - 08:30 AM".
func SlotRange(index int) string {
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	start := base.Add(firstSlotStart + time.Duration(index)*slotLength)
	end := start.Add(slotLength)
	return fmt.Sprintf("%s - %s", start.Format("03:04 PM"), end.Format("03:04 PM"))
}

func newReceipt(id, hospital string, token int, reg form.Registration, now time.Time) *Receipt {
	index, position, wait := Slot(token)
	return &Receipt{
		ID:            id,
		Hospital:      hospital,
		Day:           now.Format(dayLayout),
		Patient:       reg.FullName(),
		Token:         token,
		SlotIndex:     index,
		TimeRange:     SlotRange(index),
		Position:      position,
		EstimatedWait: wait,
		SubmittedAt:   now,
	}
}
