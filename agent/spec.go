package agent

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/eino-contrib/jsonschema"
	"github.com/tbxark/voiceform/form"
	"github.com/tbxark/voiceform/registry"
	"github.com/tbxark/voiceform/types"
)

// Policy decides which personal fields block advancement.
type Policy struct {
	// CollectEmail asks for an email address between phone and address.
	CollectEmail bool
	// SoftRequireAfter, when positive, treats phone, email and address as
	// satisfied once they have been asked that many times.
	SoftRequireAfter int
}

type FormSpec interface {
	JsonSchema() (string, error)

	// Fields lists the collected fields in asking order.
	Fields() []types.FieldID

	// MissingFacts lists the unanswered required fields in asking order.
	MissingFacts(current form.Reader, asks map[types.FieldID]int) []types.FieldInfo

	Summary(current form.Reader) string
}

// Submitter receives the confirmed registration.
type Submitter interface {
	Submit(ctx context.Context, reg form.Registration) (*registry.Receipt, error)
}

var _ FormSpec = (*RegistrationSpec)(nil)

// RegistrationSpec describes the hospital registration form.
type RegistrationSpec struct {
	Policy Policy
}

func NewRegistrationSpec(policy Policy) *RegistrationSpec {
	return &RegistrationSpec{Policy: policy}
}

// Fields returns the fields collected under the policy, in asking order.
func (s *RegistrationSpec) Fields() []types.FieldID {
	fields := make([]types.FieldID, 0, len(types.AllFields))
	for _, f := range types.AllFields {
		if f == types.FieldEmail && !s.Policy.CollectEmail {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

func (s *RegistrationSpec) JsonSchema() (string, error) {
	schema := jsonschema.Reflect(&form.Registration{})
	schema.Title = "Hospital registration"
	schema.Description = "Patient registration collected by voice: identity, personal details, medical information and an emergency contact."
	out, err := sonic.MarshalString(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return out, nil
}

func (s *RegistrationSpec) MissingFacts(current form.Reader, asks map[types.FieldID]int) []types.FieldInfo {
	var missing []types.FieldInfo
	for _, f := range s.Fields() {
		if current.IsSet(f) || s.softSatisfied(f, asks) {
			continue
		}
		missing = append(missing, types.NewFieldInfo(f, true))
	}
	return missing
}

func (s *RegistrationSpec) softSatisfied(f types.FieldID, asks map[types.FieldID]int) bool {
	if s.Policy.SoftRequireAfter <= 0 {
		return false
	}
	switch f {
	case types.FieldPhone, types.FieldEmail, types.FieldAddress:
		return asks[f] >= s.Policy.SoftRequireAfter
	}
	return false
}

// Summary renders the review table, followed by any required field still
// empty.
func (s *RegistrationSpec) Summary(current form.Reader) string {
	return types.FormatSummary(s.Fields(), current.Get) + types.FormatMissingFields(s.MissingFacts(current, nil))
}
