package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbxark/voiceform/types"
)

// DefaultHospital names the facility in the greeting.
const DefaultHospital = "City General Hospital"

// Escalation ladders, indexed by ask count. The last entry repeats once the
// ladder is exhausted. {first} and {contact} are replaced with form values.
var ladders = map[types.FieldID][]string{
	types.FieldFirstName: {
		"To get started, could you please tell me your full name?",
		"I didn't catch your name. Please say your first and last name, for example 'My name is John Smith'.",
		"Let me try once more. Please say just your first and last name.",
		"I'm having difficulty understanding your name. You can type it into the form, or say 'skip field' to continue.",
	},
	types.FieldLastName: {
		"Thanks, {first}! And what is your last name?",
		"I didn't catch your last name. Could you say it again, slowly?",
		"I'm having difficulty understanding your last name. You can type it into the form, or say 'skip field' to continue.",
	},
	types.FieldDateOfBirth: {
		"Nice to meet you, {first}! What is your date of birth? Please say the day, month and year.",
		"I didn't catch your date of birth. Please say it as day, month, year, for example 'the 15th of June 1990'.",
		"Let me try once more. Please tell me your date of birth, for example '21 10 2005'.",
		"I'm having difficulty understanding your date of birth. You can enter it in the form manually, or say 'skip field' to continue.",
	},
	types.FieldGender: {
		"For medical records, could you tell me your gender? You can say male, female, or other.",
		"I didn't catch that clearly. Please say just 'male', 'female', or 'other' for your gender.",
		"Let me try once more. Please say 'male', 'female', or 'other'. You can also just say the letter M, F, or O.",
		"I'm having difficulty understanding your voice input for gender. You can either click on the gender dropdown in the form to select manually, or say 'skip gender' to continue.",
	},
	types.FieldCountryCode: {
		"What is your country code? For example, say 'plus one' for the USA or just say your country, like 'India'.",
		"I didn't catch the country code. Please say 'plus' followed by the digits, or the name of your country.",
		"Let me try once more. Which country is your phone number from?",
		"I'm having difficulty understanding the country code. You can select it in the form, or say 'skip field' to continue.",
	},
	types.FieldPhone: {
		"What is your phone number?",
		"I didn't catch that. Please say your ten digit phone number, one digit at a time if that's easier.",
		"Let me try once more. Please say your phone number slowly, digit by digit.",
		"I'm having difficulty understanding your phone number. You can type it into the form, or say 'skip phone' to continue.",
	},
	types.FieldEmail: {
		"What is your email address?",
		"I didn't catch your email. Please say it like 'john dot smith at gmail dot com', or spell it letter by letter.",
		"Let me try once more. Please spell your email address slowly.",
		"I'm having difficulty understanding your email. You can type it into the form, or say 'skip email' to continue.",
	},
	types.FieldAddress: {
		"What is your home address?",
		"Please tell me your street address, for example '123 Main Street, Springfield'.",
		"Let me try once more. Please say your house number and street name.",
		"I'm having difficulty understanding your address. You can type it into the form, or say 'skip address' to continue.",
	},
	types.FieldSymptoms: {
		"Thank you. Now for some medical information. What symptoms are you experiencing today? You can say 'none' if you have no symptoms.",
		"Could you describe your symptoms, or say 'none'?",
	},
	types.FieldAllergies: {
		"Do you have any allergies? Say 'none' if you don't have any.",
		"Please tell me about any allergies you have, or say 'none'.",
	},
	types.FieldMedications: {
		"Are you currently taking any medications?",
		"Please list any medications you take, or say 'none'.",
	},
	types.FieldMedicalHistory: {
		"Do you have any significant medical history, such as past surgeries or chronic conditions?",
		"Please describe any past surgeries or ongoing conditions, or say 'none'.",
	},
	types.FieldEmergencyName: {
		"Almost done! Who should we contact in case of an emergency? Please tell me their name.",
		"I didn't catch the name. Please say your emergency contact's first and last name.",
		"I'm having difficulty understanding the name. You can type it into the form, or say 'skip field' to continue.",
	},
	types.FieldEmergencyPhone: {
		"Great! And what's {contact}'s phone number?",
		"I didn't catch that. Please say {contact}'s ten digit phone number.",
		"I'm having difficulty understanding the number. You can type it into the form, or say 'skip field' to continue.",
	},
	types.FieldEmergencyRelation: {
		"And how is {contact} related to you? For example, spouse, parent, or friend.",
		"Please tell me your relationship to {contact}, for example mother, brother, or friend.",
	},
}

const (
	confirmMessage      = "Excellent! I've filled out your registration form. Please review the details. Is all the information accurate? Say 'yes' to submit or 'no' to make changes."
	deniedMessage       = "No problem! What would you like to change? Please tell me the correct information."
	unrecognizedMessage = "I didn't understand. Could you please say 'yes' if the information is correct, or 'no' if you need to make changes?"
	finishedMessage     = "Your registration is already complete. Thank you!"
	helpMessage         = "Just answer each question in your own words. To move past a question say 'skip field', or say 'skip phone', 'skip email', 'skip address' or 'skip gender' for those fields."
	urgentMessage       = "I understand this may be urgent. If this is a medical emergency, please alert the hospital staff right away. Let's finish your registration quickly."
	pausedMessage       = "Registration paused. Say start to continue."
)

type LocalDialogueGenerator struct {
	Hospital string
}

func NewLocalDialogueGenerator(hospital string) *LocalDialogueGenerator {
	if hospital == "" {
		hospital = DefaultHospital
	}
	return &LocalDialogueGenerator{Hospital: hospital}
}

func (g *LocalDialogueGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	switch req.Kind {
	case KindGreeting:
		return fmt.Sprintf("Hello! Welcome to %s. I'm your registration assistant, and I'll help you fill out your registration form by voice.", g.hospital()), nil
	case KindAsk:
		ladder, ok := ladders[req.Field]
		if !ok {
			return "", fmt.Errorf("no prompt for field %q", req.Field)
		}
		return g.fill(req, ladder[escalation(req.AskCount, len(ladder))]), nil
	case KindConfirm:
		return confirmMessage, nil
	case KindDenied:
		return deniedMessage, nil
	case KindCorrect:
		return fmt.Sprintf("No problem! Please tell me the correct %s.", strings.ToLower(req.Field.DisplayName())), nil
	case KindUnrecognized:
		return unrecognizedMessage, nil
	case KindComplete:
		return g.completion(req), nil
	case KindFinished:
		return finishedMessage, nil
	case KindSkipped:
		if req.Field == types.FieldGender {
			return fmt.Sprintf("No problem, I've recorded your gender as %s.", req.SkipValue), nil
		}
		return fmt.Sprintf("No problem, I've skipped the %s.", strings.ToLower(req.Field.DisplayName())), nil
	case KindHelp:
		return helpMessage, nil
	case KindUrgent:
		return urgentMessage, nil
	case KindPaused:
		return pausedMessage, nil
	}
	return "", fmt.Errorf("unknown dialogue kind %q", req.Kind)
}

func (g *LocalDialogueGenerator) hospital() string {
	if g.Hospital == "" {
		return DefaultHospital
	}
	return g.Hospital
}

func (g *LocalDialogueGenerator) completion(req *Request) string {
	var sb strings.Builder
	if first := req.value(types.FieldFirstName); first != "" && first != types.SkippedByUser {
		fmt.Fprintf(&sb, "Thank you, %s! ", first)
	} else {
		sb.WriteString("Thank you! ")
	}
	c := req.Completion
	if c == nil {
		sb.WriteString("Your registration has been submitted successfully.")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Your registration is complete. Your token number is %d, and your appointment slot is %s. ", c.Token, c.TimeRange)
	if c.EstimatedWait > 0 {
		fmt.Fprintf(&sb, "You are number %d in that slot, so the estimated wait is about %d minutes.", c.Position, c.EstimatedWait)
	} else {
		sb.WriteString("You are first in that slot.")
	}
	return sb.String()
}

func (g *LocalDialogueGenerator) fill(req *Request, text string) string {
	first := req.value(types.FieldFirstName)
	if first == "" || first == types.SkippedByUser {
		first = "there"
	}
	contact := req.value(types.FieldEmergencyName)
	if contact == "" || contact == types.SkippedByUser {
		contact = "your emergency contact"
	}
	return strings.NewReplacer("{first}", first, "{contact}", contact).Replace(text)
}

// escalation maps an ask count to a ladder index.
func escalation(askCount, n int) int {
	i := askCount - 1
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	return i
}

// FailbackDialogueGenerator returns the first message produced without error.
type FailbackDialogueGenerator struct {
	generators []Generator
}

func NewFailbackDialogueGenerator(generators ...Generator) *FailbackDialogueGenerator {
	return &FailbackDialogueGenerator{generators: generators}
}

func (g *FailbackDialogueGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	var lastErr error
	for _, generator := range g.generators {
		message, err := generator.GenerateDialogue(ctx, req)
		if err == nil {
			return message, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("all dialogue generators failed: %w", lastErr)
}
