// Package extract turns a single utterance into form field values. Each
// field has a pure recognizer; the Engine runs them in priority order and
// refuses to overwrite a filled field unless that field is the current
// question.
package extract

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tbxark/voiceform/form"
	"github.com/tbxark/voiceform/types"
)

// Context is the conversation state an extractor may look at.
type Context struct {
	Step         types.Step
	LastQuestion types.FieldID
	// SubIndex is the medical or emergency-contact sub-step.
	SubIndex    int
	AskCount    map[types.FieldID]int
	PendingYear int
	Form        form.Reader
}

// Asks returns how many times field has been asked for.
func (c Context) Asks(field types.FieldID) int {
	return c.AskCount[field]
}

func (c Context) filled(field types.FieldID) bool {
	return c.Form != nil && c.Form.IsSet(field)
}

func (c Context) personal() bool {
	return c.Step == types.StepIdentity || c.Step == types.StepPersonalDetails
}

// Fill is a candidate field value.
type Fill struct {
	Field types.FieldID
	Value string
	// Override allows replacing a filled field that is not the current question.
	Override bool
}

// Result is what a single rule produced.
type Result struct {
	Fills    []Fill
	Notices  []string
	FollowUp string
	// FollowUpField is the field FollowUp asks about.
	FollowUpField types.FieldID
	PendingYear   int
	// Final stops the remaining rules once a fill from this rule is accepted.
	Final bool
}

// Rule is one recognizer in the engine's ordered list.
type Rule struct {
	Name  string
	Apply func(text string, c Context) Result
}

// Outcome collects the accepted results of a whole utterance.
type Outcome struct {
	Fills         []Fill
	Rejected      []Fill
	Notices       []string
	FollowUp      string
	FollowUpField types.FieldID
	PendingYear   int
	Matched       []string
}

// Filled reports whether the outcome wrote field.
func (o Outcome) Filled(field types.FieldID) bool {
	for _, f := range o.Fills {
		if f.Field == field {
			return true
		}
	}
	return false
}

type Engine struct {
	rules                []Rule
	now                  func() time.Time
	collectEmail         bool
	addressFallbackAfter int
}

type Option func(*Engine)

// WithClock sets the time source used for age and date validation.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithEmail enables the email recognizer.
func WithEmail(enabled bool) Option {
	return func(e *Engine) { e.collectEmail = enabled }
}

// WithAddressFallbackAfter sets how many failed address answers are
// tolerated before any non-trivial answer is stored verbatim.
func WithAddressFallbackAfter(n int) Option {
	return func(e *Engine) { e.addressFallbackAfter = n }
}

// WithRules appends custom rules after the built-in ones.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) { e.rules = append(e.rules, rules...) }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now, addressFallbackAfter: 2}
	e.rules = []Rule{
		{Name: "name", Apply: e.name},
		{Name: "dateOfBirth", Apply: e.dateOfBirth},
		{Name: "countryCode", Apply: e.countryCode},
		{Name: "gender", Apply: e.gender},
		{Name: "phone", Apply: e.phone},
		{Name: "email", Apply: e.email},
		{Name: "address", Apply: e.address},
		{Name: "medical", Apply: e.medical},
		{Name: "emergency", Apply: e.emergency},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs every rule against text and keeps the fills that respect the
// overwrite rule.
func (e *Engine) Extract(text string, c Context) Outcome {
	var out Outcome
	text = strings.TrimSpace(text)
	if text == "" {
		return out
	}
	taken := map[types.FieldID]bool{}
	for _, rule := range e.rules {
		res := rule.Apply(text, c)
		accepted := 0
		for _, f := range res.Fills {
			if taken[f.Field] {
				continue
			}
			if !allowed(f, c) {
				slog.Debug("Extraction kept existing value", "rule", rule.Name, "field", f.Field, "candidate", f.Value)
				out.Rejected = append(out.Rejected, f)
				continue
			}
			taken[f.Field] = true
			out.Fills = append(out.Fills, f)
			accepted++
		}
		if len(res.Fills) > 0 && accepted == 0 {
			continue
		}
		if accepted == 0 && res.FollowUp == "" && len(res.Notices) == 0 {
			continue
		}
		out.Matched = append(out.Matched, rule.Name)
		out.Notices = append(out.Notices, res.Notices...)
		if out.FollowUp == "" {
			out.FollowUp, out.FollowUpField = res.FollowUp, res.FollowUpField
		}
		if res.PendingYear > 0 {
			out.PendingYear = res.PendingYear
		}
		if res.Final && accepted > 0 {
			break
		}
	}
	slog.Debug("Extracted fields", "matched", out.Matched, "fills", len(out.Fills), "rejected", len(out.Rejected))
	return out
}

func allowed(f Fill, c Context) bool {
	if !c.filled(f.Field) {
		return true
	}
	return f.Override || c.LastQuestion == f.Field
}

func (e *Engine) name(text string, c Context) Result {
	if !c.personal() {
		return Result{}
	}
	asked := c.LastQuestion == types.FieldFirstName || c.LastQuestion == types.FieldLastName
	if !asked && (c.LastQuestion != "" || c.filled(types.FieldFirstName)) {
		return Result{}
	}
	first, last, ok := ExtractName(text)
	if !ok {
		return Result{}
	}
	if c.LastQuestion == types.FieldLastName {
		return Result{Fills: []Fill{{Field: types.FieldLastName, Value: strings.TrimSpace(first + " " + last)}}}
	}
	fills := []Fill{{Field: types.FieldFirstName, Value: first}}
	if last != "" {
		fills = append(fills, Fill{Field: types.FieldLastName, Value: last, Override: asked})
	}
	return Result{Fills: fills}
}

func (e *Engine) dateOfBirth(text string, c Context) Result {
	if !c.personal() {
		return Result{}
	}
	asked := c.LastQuestion == types.FieldDateOfBirth
	lower := strings.ToLower(text)
	if !asked && !strings.Contains(lower, "birth") && !strings.Contains(lower, "born") {
		return Result{}
	}
	now := e.now()
	res, ok := ExtractDateOfBirth(text, c.PendingYear, now)
	switch {
	case ok && res.YearOnly > 0:
		return Result{
			PendingYear:   res.YearOnly,
			FollowUpField: types.FieldDateOfBirth,
			FollowUp:      fmt.Sprintf("I heard %d. Could you also tell me the month and day? For example, \"June 28th\".", res.YearOnly),
		}
	case ok:
		date := res.Date.Format(DateLayout)
		return Result{
			Fills:   []Fill{{Field: types.FieldDateOfBirth, Value: date}},
			Notices: []string{fmt.Sprintf("Great! I've recorded your date of birth as %s, so you are %d years old.", date, AgeOn(res.Date, now))},
		}
	}
	if asked {
		if age, ok := ExtractAge(text); ok {
			return Result{
				FollowUpField: types.FieldDateOfBirth,
				FollowUp:      fmt.Sprintf("Thanks! You mentioned you are %d. For the registration I need your full date of birth, for example \"15 June 1990\".", age),
			}
		}
	}
	return Result{}
}

func (e *Engine) countryCode(text string, c Context) Result {
	if !c.personal() {
		return Result{}
	}
	asked := c.LastQuestion == types.FieldCountryCode
	if !asked && !MentionsCountryCode(text) {
		return Result{}
	}
	country, ok := ExtractCountryCode(text, asked)
	if !ok {
		return Result{}
	}
	_, phoneToo := ExtractPhone(text)
	return Result{
		Fills:   []Fill{{Field: types.FieldCountryCode, Value: country.Code}},
		Notices: []string{fmt.Sprintf("Great! I've set your country code to %s for %s.", country.Code, country.Name)},
		Final:   !phoneToo,
	}
}

func (e *Engine) gender(text string, c Context) Result {
	if !c.personal() {
		return Result{}
	}
	asked := c.LastQuestion == types.FieldGender
	if !asked && !strings.Contains(strings.ToLower(text), "gender") {
		return Result{}
	}
	m, ok := ExtractGender(text, asked)
	if !ok {
		return Result{}
	}
	notice := fmt.Sprintf("Perfect! I've recorded your gender as %s.", m.Value)
	if m.Value == GenderOther {
		notice = "Perfect! I've recorded your gender selection."
	}
	if m.Heard != "" && !strings.EqualFold(m.Heard, m.Value) {
		notice += fmt.Sprintf(" I understood you said '%s'. Voice recognition sometimes hears '%s', but I corrected it automatically.", m.Value, m.Heard)
	}
	return Result{
		Fills:   []Fill{{Field: types.FieldGender, Value: m.Value}},
		Notices: []string{notice},
	}
}

func (e *Engine) phone(text string, c Context) Result {
	if !c.personal() {
		return Result{}
	}
	phone, ok := ExtractPhone(text)
	if !ok {
		return Result{}
	}
	return Result{Fills: []Fill{{Field: types.FieldPhone, Value: phone}}}
}

func (e *Engine) email(text string, c Context) Result {
	if !e.collectEmail || !c.personal() {
		return Result{}
	}
	if c.LastQuestion != types.FieldEmail && !HasEmailHint(text) {
		return Result{}
	}
	addr, ok := ExtractEmail(text)
	if !ok {
		return Result{}
	}
	return Result{Fills: []Fill{{Field: types.FieldEmail, Value: addr}}}
}

func (e *Engine) address(text string, c Context) Result {
	if !c.personal() {
		return Result{}
	}
	asked := c.LastQuestion == types.FieldAddress
	if !asked && c.filled(types.FieldAddress) {
		return Result{}
	}
	// "John Lane" answers a name question
	if c.LastQuestion == types.FieldFirstName || c.LastQuestion == types.FieldLastName {
		return Result{}
	}
	if addr, ok := ExtractAddress(text, asked); ok {
		return Result{Fills: []Fill{{Field: types.FieldAddress, Value: addr}}}
	}
	// the current ask is included in the count
	if asked && c.Asks(types.FieldAddress) > e.addressFallbackAfter {
		if addr := CleanAddress(text); len(addr) > 3 {
			return Result{
				Fills:   []Fill{{Field: types.FieldAddress, Value: addr}},
				Notices: []string{"Perfect! I've got your address noted down."},
			}
		}
	}
	return Result{}
}

func (e *Engine) medical(text string, c Context) Result {
	if c.Step != types.StepMedical {
		return Result{}
	}
	value, _ := medicalCorrector.Apply(strings.Trim(text, " .!"))
	var res Result
	for i, field := range types.MedicalFields {
		current := i == c.SubIndex || c.LastQuestion == field
		negative := IsNegative(field, text)
		switch {
		case current && negative:
			res.Fills = append(res.Fills, Fill{Field: field, Value: NoneReported[field]})
		case current && len(value) > 1:
			res.Fills = append(res.Fills, Fill{Field: field, Value: value})
		case !current && !negative && !c.filled(field) && MentionsMedical(field, text):
			res.Fills = append(res.Fills, Fill{Field: field, Value: value})
		}
	}
	return res
}

func (e *Engine) emergency(text string, c Context) Result {
	if c.Step != types.StepEmergencyContact {
		return Result{}
	}
	asking := func(i int, field types.FieldID) bool {
		return c.SubIndex == i || c.LastQuestion == field
	}
	switch {
	case asking(0, types.FieldEmergencyName):
		var res Result
		candidate := text
		if rel, ok := ExtractRelationship(text); ok {
			res.Fills = append(res.Fills, Fill{Field: types.FieldEmergencyRelation, Value: rel})
			candidate = relationshipPattern.ReplaceAllString(strings.ToLower(text), " ")
		}
		first, last, ok := ExtractName(candidate)
		if !ok {
			return Result{}
		}
		res.Fills = append([]Fill{{Field: types.FieldEmergencyName, Value: strings.TrimSpace(first + " " + last)}}, res.Fills...)
		return res
	case asking(1, types.FieldEmergencyPhone):
		phone, ok := ExtractPhone(text)
		if !ok {
			return Result{}
		}
		return Result{Fills: []Fill{{Field: types.FieldEmergencyPhone, Value: phone}}}
	case asking(2, types.FieldEmergencyRelation):
		if rel, ok := ExtractRelationship(text); ok {
			return Result{Fills: []Fill{{Field: types.FieldEmergencyRelation, Value: rel}}}
		}
		if c.Asks(types.FieldEmergencyRelation) >= 2 {
			if raw := RawRelationship(text); len(raw) > 1 {
				return Result{Fills: []Fill{{Field: types.FieldEmergencyRelation, Value: raw}}}
			}
		}
	}
	return Result{}
}
