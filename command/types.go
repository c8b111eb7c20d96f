package command

import (
	"context"

	"github.com/tbxark/voiceform/types"
)

type Command string

const (
	None        Command = "none"
	SkipCurrent Command = "skip_current"
	SkipPhone   Command = "skip_phone"
	SkipEmail   Command = "skip_email"
	SkipAddress Command = "skip_address"
	SkipGender  Command = "skip_gender"
	Help        Command = "help"
	Affirm      Command = "affirm"
	Deny        Command = "deny"
)

// SkipField returns the field targeted by a field-specific skip command.
func (c Command) SkipField() (types.FieldID, bool) {
	switch c {
	case SkipPhone:
		return types.FieldPhone, true
	case SkipEmail:
		return types.FieldEmail, true
	case SkipAddress:
		return types.FieldAddress, true
	case SkipGender:
		return types.FieldGender, true
	}
	return "", false
}

// IsSkip reports whether c skips a field.
func (c Command) IsSkip() bool {
	_, ok := c.SkipField()
	return ok || c == SkipCurrent
}

type Parser interface {
	ParseCommand(ctx context.Context, req *types.TurnRequest) (Command, error)
}
