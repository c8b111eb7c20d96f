package command

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/tbxark/voiceform/types"
)

// MaxHelpWords bounds the utterance length in which "help" counts as a
// request for help rather than part of an answer.
const MaxHelpWords = 6

type keywordRule struct {
	cmd Command
	re  *regexp.Regexp
}

// LocalCommandParser recognizes voice commands with keyword patterns. Skip
// commands are universal except at confirmation, where only affirm and deny
// are understood.
type LocalCommandParser struct {
	skips   []keywordRule
	help    *regexp.Regexp
	askHelp *regexp.Regexp
	affirm  *regexp.Regexp
	deny    *regexp.Regexp
	maxHelp int
}

func NewLocalCommandParser() *LocalCommandParser {
	return &LocalCommandParser{
		// field-specific skips first so "skip phone" never reads as "skip this"
		skips: []keywordRule{
			{SkipPhone, keywords("skip phone", "skip number", "skip the phone", "skip phone number", "skip my number")},
			{SkipEmail, keywords("skip email", "skip e-mail", "skip the email", "no email")},
			{SkipAddress, keywords("skip address", "skip the address", "skip my address")},
			{SkipGender, keywords("skip gender", "skip the gender")},
			{SkipCurrent, keywords("next field", "skip field", "skip question", "skip this", "skip it", "move on", "next question")},
		},
		help: keywords("help", "confused", "i don't understand", "what do i say", "what should i say"),
		// medical answers describe how the patient feels, so only a bare request counts
		askHelp: regexp.MustCompile(`^(?:help|help me|i need help|what do i say|what should i say)[.!?]*$`),
		affirm:  keywords("yes", "yeah", "yep", "yup", "correct", "right", "accurate", "confirm", "submit", "looks good", "that's good", "all good"),
		deny:    keywords("no", "nope", "wrong", "incorrect", "not correct", "not right", "change", "mistake"),
		maxHelp: MaxHelpWords,
	}
}

func keywords(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func (p *LocalCommandParser) ParseCommand(ctx context.Context, req *types.TurnRequest) (Command, error) {
	normalized := strings.ToLower(strings.TrimSpace(req.MessagePair.Answer))
	if normalized == "" {
		return None, nil
	}
	if p.isHelp(req.Step, normalized) {
		return Help, nil
	}
	if req.Step == types.StepConfirmation {
		// "not correct" contains "correct", so denial wins
		switch {
		case p.deny.MatchString(normalized):
			return Deny, nil
		case p.affirm.MatchString(normalized):
			return Affirm, nil
		}
		return None, nil
	}
	if req.Step == types.StepCompleted {
		return None, nil
	}
	for _, rule := range p.skips {
		if rule.re.MatchString(normalized) {
			slog.Debug("Matched skip command", "command", rule.cmd, "input", normalized)
			return rule.cmd, nil
		}
	}
	return None, nil
}

func (p *LocalCommandParser) isHelp(step types.Step, s string) bool {
	if step == types.StepMedical {
		return p.askHelp.MatchString(s)
	}
	return len(strings.Fields(s)) <= p.maxHelp && p.help.MatchString(s)
}

// FailbackCommandParser tries each parser in order and returns the first
// result that is not an error.
type FailbackCommandParser struct {
	parsers []Parser
}

func NewFailbackCommandParser(parsers ...Parser) *FailbackCommandParser {
	return &FailbackCommandParser{parsers: parsers}
}

func (p *FailbackCommandParser) ParseCommand(ctx context.Context, req *types.TurnRequest) (Command, error) {
	var lastErr error
	for _, parser := range p.parsers {
		cmd, err := parser.ParseCommand(ctx, req)
		if err == nil {
			return cmd, nil
		}
		lastErr = err
	}
	return None, lastErr
}
