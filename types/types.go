package types

import "strings"

// FieldID names one entry of the registration form.
type FieldID string

const (
	FieldFirstName         FieldID = "firstName"
	FieldLastName          FieldID = "lastName"
	FieldDateOfBirth       FieldID = "dateOfBirth"
	FieldGender            FieldID = "gender"
	FieldCountryCode       FieldID = "countryCode"
	FieldPhone             FieldID = "phone"
	FieldEmail             FieldID = "email"
	FieldAddress           FieldID = "address"
	FieldSymptoms          FieldID = "symptoms"
	FieldAllergies         FieldID = "allergies"
	FieldMedications       FieldID = "medications"
	FieldMedicalHistory    FieldID = "medicalHistory"
	FieldEmergencyName     FieldID = "emergencyName"
	FieldEmergencyPhone    FieldID = "emergencyPhone"
	FieldEmergencyRelation FieldID = "emergencyRelation"
)

// SkippedByUser marks a field the user explicitly declined to answer.
const SkippedByUser = "Skipped by user"

var (
	// AllFields lists every form field in display order.
	AllFields = []FieldID{
		FieldFirstName, FieldLastName, FieldDateOfBirth, FieldGender, FieldCountryCode,
		FieldPhone, FieldEmail, FieldAddress,
		FieldSymptoms, FieldAllergies, FieldMedications, FieldMedicalHistory,
		FieldEmergencyName, FieldEmergencyPhone, FieldEmergencyRelation,
	}
	// MedicalFields is the order of the medical sub-steps.
	MedicalFields = []FieldID{FieldSymptoms, FieldAllergies, FieldMedications, FieldMedicalHistory}
	// EmergencyFields is the order of the emergency-contact sub-steps.
	EmergencyFields = []FieldID{FieldEmergencyName, FieldEmergencyPhone, FieldEmergencyRelation}
)

var displayNames = map[FieldID]string{
	FieldFirstName:         "First name",
	FieldLastName:          "Last name",
	FieldDateOfBirth:       "Date of birth",
	FieldGender:            "Gender",
	FieldCountryCode:       "Country code",
	FieldPhone:             "Phone number",
	FieldEmail:             "Email",
	FieldAddress:           "Address",
	FieldSymptoms:          "Symptoms",
	FieldAllergies:         "Allergies",
	FieldMedications:       "Current medications",
	FieldMedicalHistory:    "Medical history",
	FieldEmergencyName:     "Emergency contact name",
	FieldEmergencyPhone:    "Emergency contact phone",
	FieldEmergencyRelation: "Emergency contact relationship",
}

// Valid reports whether f is a known form field.
func (f FieldID) Valid() bool {
	_, ok := displayNames[f]
	return ok
}

// Pointer returns the RFC 6901 pointer of the field inside the registration document.
func (f FieldID) Pointer() string {
	return "/" + string(f)
}

func (f FieldID) DisplayName() string {
	if name, ok := displayNames[f]; ok {
		return name
	}
	return string(f)
}

// FieldFromPointer is the inverse of FieldID.Pointer.
func FieldFromPointer(pointer string) (FieldID, bool) {
	f := FieldID(strings.TrimPrefix(pointer, "/"))
	return f, f.Valid()
}

// Step is a registration stage of the conversation.
type Step string

const (
	StepIdentity         Step = "identity"
	StepPersonalDetails  Step = "personal_details"
	StepMedical          Step = "medical"
	StepEmergencyContact Step = "emergency_contact"
	StepConfirmation     Step = "confirmation"
	StepCompleted        Step = "completed"
)

type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseConfirming Phase = "confirming"
	PhaseConfirmed  Phase = "confirmed"
	PhaseCancelled  Phase = "cancelled"
)

type FieldInfo struct {
	Field       FieldID `json:"field"`
	JSONPointer string  `json:"json_pointer"`
	DisplayName string  `json:"display_name"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required"`
}

// NewFieldInfo describes f with its default pointer and display name.
func NewFieldInfo(f FieldID, required bool) FieldInfo {
	return FieldInfo{
		Field:       f,
		JSONPointer: f.Pointer(),
		DisplayName: f.DisplayName(),
		Required:    required,
	}
}

type MessagePair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// TurnRequest is what each pipeline stage sees for a single utterance.
type TurnRequest struct {
	Step         Step        `json:"step"`
	Phase        Phase       `json:"phase"`
	LastQuestion FieldID     `json:"last_question,omitempty"`
	AskCount     int         `json:"ask_count"`
	MessagePair  MessagePair `json:"message_pair"`

	MissingFields []FieldInfo `json:"missing_fields,omitempty"`
}
