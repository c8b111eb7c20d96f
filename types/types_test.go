package types

import (
	"strings"
	"testing"
)

func TestFieldPointerRoundTrip(t *testing.T) {
	t.Parallel()
	for _, f := range AllFields {
		got, ok := FieldFromPointer(f.Pointer())
		if !ok || got != f {
			t.Errorf("FieldFromPointer(%q) = %q, %v", f.Pointer(), got, ok)
		}
	}
	if _, ok := FieldFromPointer("/nickname"); ok {
		t.Error("unknown pointer should not resolve")
	}
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()
	values := map[FieldID]string{FieldFirstName: "John", FieldPhone: "555-123-4567"}
	out := FormatSummary([]FieldID{FieldFirstName, FieldPhone, FieldAddress}, func(f FieldID) string {
		return values[f]
	})
	for _, want := range []string{"First name", "John", "555-123-4567", "Address"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestFormatMissingFieldsEmpty(t *testing.T) {
	t.Parallel()
	if got := FormatMissingFields(nil); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
	out := FormatMissingFields([]FieldInfo{NewFieldInfo(FieldGender, true)})
	if !strings.Contains(out, "/gender") {
		t.Errorf("missing pointer in %q", out)
	}
}
