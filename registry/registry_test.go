package registry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tbxark/voiceform/form"
)

func TestSlot(t *testing.T) {
	t.Parallel()
	tests := []struct {
		token                 int
		index, position, wait int
		timeRange             string
	}{
		{1, 0, 1, 0, "07:30 AM - 08:30 AM"},
		{2, 0, 2, 5, "07:30 AM - 08:30 AM"},
		{60, 0, 60, 295, "07:30 AM - 08:30 AM"},
		{61, 1, 1, 0, "08:30 AM - 09:30 AM"},
		{780, 12, 60, 295, "07:30 PM - 08:30 PM"},
		{781, 0, 1, 0, "07:30 AM - 08:30 AM"},
	}
	for _, tt := range tests {
		index, position, wait := Slot(tt.token)
		if index != tt.index || position != tt.position || wait != tt.wait {
			t.Errorf("Slot(%d) = %d, %d, %d; want %d, %d, %d", tt.token, index, position, wait, tt.index, tt.position, tt.wait)
		}
		if got := SlotRange(index); got != tt.timeRange {
			t.Errorf("SlotRange(%d) = %q, want %q", index, got, tt.timeRange)
		}
	}
}

func testRegistration() form.Registration {
	return form.Registration{FirstName: "John", LastName: "Smith", Phone: "555-123-4567"}
}

func exerciseRegistry(t *testing.T, r Registry, clock *time.Time) {
	t.Helper()
	ctx := context.Background()

	first, err := r.Submit(ctx, testRegistration())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if first.Token != 1 || first.Patient != "John Smith" || first.TimeRange != "07:30 AM - 08:30 AM" {
		t.Errorf("first receipt = %+v", first)
	}
	second, err := r.Submit(ctx, testRegistration())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if second.Token != 2 || second.EstimatedWait != 5 {
		t.Errorf("second receipt = %+v", second)
	}

	*clock = clock.Add(24 * time.Hour)
	nextDay, err := r.Submit(ctx, testRegistration())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if nextDay.Token != 1 {
		t.Errorf("token should restart each day, got %d", nextDay.Token)
	}

	got, reg, err := r.Get(ctx, second.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Token != 2 || reg.Phone != "555-123-4567" {
		t.Errorf("Get = %+v, %+v", got, reg)
	}
	if _, _, err := r.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v", err)
	}
}

func TestMemoryRegistry(t *testing.T) {
	t.Parallel()
	clock := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	r := NewMemoryRegistry(WithHospital("City General"), WithClock(func() time.Time { return clock }))
	defer r.Close()
	exerciseRegistry(t, r, &clock)
}

func TestSQLiteRegistry(t *testing.T) {
	t.Parallel()
	clock := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	r, err := NewSQLiteRegistry(
		WithDSN(filepath.Join(t.TempDir(), "registry", "test.db")),
		WithHospital("City General"),
		WithClock(func() time.Time { return clock }),
	)
	if err != nil {
		t.Fatalf("NewSQLiteRegistry: %v", err)
	}
	defer r.Close()
	exerciseRegistry(t, r, &clock)
}

func TestSQLiteRegistryRequiresDSN(t *testing.T) {
	t.Parallel()
	if _, err := NewSQLiteRegistry(); err == nil {
		t.Error("expected an error without a DSN")
	}
}
