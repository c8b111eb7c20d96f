package form

import "github.com/tbxark/voiceform/types"

// Registration is the document view of the form. Empty members are omitted
// so that an unanswered field and an absent field look the same.
type Registration struct {
	FirstName   string `json:"firstName,omitempty" jsonschema:"description=Patient first name"`
	LastName    string `json:"lastName,omitempty" jsonschema:"description=Patient last name"`
	DateOfBirth string `json:"dateOfBirth,omitempty" jsonschema:"description=Date of birth as YYYY-MM-DD"`
	Gender      string `json:"gender,omitempty" jsonschema:"enum=male,enum=female,enum=other,description=Gender"`
	CountryCode string `json:"countryCode,omitempty" jsonschema:"description=Dialing code such as +1"`
	Phone       string `json:"phone,omitempty" jsonschema:"description=Phone number as XXX-XXX-XXXX"`
	Email       string `json:"email,omitempty" jsonschema:"description=Email address"`
	Address     string `json:"address,omitempty" jsonschema:"description=Home address"`

	Symptoms       string `json:"symptoms,omitempty" jsonschema:"description=Current symptoms"`
	Allergies      string `json:"allergies,omitempty" jsonschema:"description=Known allergies"`
	Medications    string `json:"medications,omitempty" jsonschema:"description=Current medications"`
	MedicalHistory string `json:"medicalHistory,omitempty" jsonschema:"description=Past surgeries and conditions"`

	EmergencyName     string `json:"emergencyName,omitempty" jsonschema:"description=Emergency contact name"`
	EmergencyPhone    string `json:"emergencyPhone,omitempty" jsonschema:"description=Emergency contact phone"`
	EmergencyRelation string `json:"emergencyRelation,omitempty" jsonschema:"description=Relationship to the patient"`
}

// Get returns the value stored for field.
func (r Registration) Get(field types.FieldID) string {
	if p := r.slot(field); p != nil {
		return *p
	}
	return ""
}

func (r *Registration) slot(field types.FieldID) *string {
	switch field {
	case types.FieldFirstName:
		return &r.FirstName
	case types.FieldLastName:
		return &r.LastName
	case types.FieldDateOfBirth:
		return &r.DateOfBirth
	case types.FieldGender:
		return &r.Gender
	case types.FieldCountryCode:
		return &r.CountryCode
	case types.FieldPhone:
		return &r.Phone
	case types.FieldEmail:
		return &r.Email
	case types.FieldAddress:
		return &r.Address
	case types.FieldSymptoms:
		return &r.Symptoms
	case types.FieldAllergies:
		return &r.Allergies
	case types.FieldMedications:
		return &r.Medications
	case types.FieldMedicalHistory:
		return &r.MedicalHistory
	case types.FieldEmergencyName:
		return &r.EmergencyName
	case types.FieldEmergencyPhone:
		return &r.EmergencyPhone
	case types.FieldEmergencyRelation:
		return &r.EmergencyRelation
	}
	return nil
}

// FullName joins first and last name.
func (r Registration) FullName() string {
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}
