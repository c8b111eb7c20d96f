package patch

import (
	"testing"

	"github.com/tbxark/voiceform/types"
)

type doc struct {
	FirstName string `json:"firstName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

func TestApplyRFC6902ReplaceMissingBecomesAdd(t *testing.T) {
	t.Parallel()
	got, err := ApplyRFC6902(doc{FirstName: "John"}, []Operation{
		Set(types.FieldPhone, "555-123-4567"),
		Set(types.FieldFirstName, "Jane"),
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got.Phone != "555-123-4567" || got.FirstName != "Jane" {
		t.Errorf("unexpected document: %+v", got)
	}
}

func TestApplyRFC6902RemoveAbsentIsDropped(t *testing.T) {
	t.Parallel()
	got, err := ApplyRFC6902(doc{FirstName: "John"}, []Operation{Clear(types.FieldAddress), Clear(types.FieldFirstName)})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got.FirstName != "" {
		t.Errorf("first name should be cleared, got %q", got.FirstName)
	}
}

func TestValidatePatchOperations(t *testing.T) {
	t.Parallel()
	allowed := map[string]bool{"/phone": true}
	tests := []struct {
		name    string
		ops     []Operation
		wantErr bool
	}{
		{"allowed", []Operation{Set(types.FieldPhone, "x")}, false},
		{"disallowed", []Operation{Set(types.FieldAddress, "x")}, true},
		{"nested", []Operation{{Op: OperationAdd, Path: "/phone/0", Value: "x"}}, true},
		{"non string", []Operation{{Op: OperationAdd, Path: "/phone", Value: 12}}, true},
		{"move", []Operation{{Op: "move", Path: "/phone"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePatchOperations(tt.ops, allowed)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGeneratePatchesFromInitial(t *testing.T) {
	t.Parallel()
	current := doc{FirstName: "John"}
	initial := doc{FirstName: "Johnny", Phone: "555-000-1111"}

	ops, err := GeneratePatchesFromInitial(current, initial, true)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(ops) != 1 || ops[0].Path != "/phone" {
		t.Fatalf("expected only phone prefill, got %+v", ops)
	}

	ops, err = GeneratePatchesFromInitial(current, initial, false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := Fields(ops); len(got) != 2 || got[0] != types.FieldFirstName {
		t.Errorf("expected firstName and phone, got %v", got)
	}
}
