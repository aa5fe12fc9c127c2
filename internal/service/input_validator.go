package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/slip"
)

const (
	// MaxSlipChars bounds the raw slip text accepted for one run
	MaxSlipChars = 20000
	// MaxLegs bounds the number of pre-parsed legs accepted for one run
	MaxLegs = 25
)

// SlipInput is one request to analyze a slip
type SlipInput struct {
	RawText    string                 `json:"slipText"`
	Legs       []models.LegInput      `json:"legs,omitempty"`
	Trusted    *models.TrustedContext `json:"trustedContext,omitempty"`
	CrowdNotes []string               `json:"crowdNotes,omitempty"`
}

// ValidationError lists every problem found in a SlipInput
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", models.ErrInvalidInput, strings.Join(e.Problems, "; "))
}

// Unwrap lets callers match models.ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return models.ErrInvalidInput
}

// InputValidator checks slip requests before a run is created.
// Empty text is valid input and produces the zero-leg verdict.
type InputValidator struct {
	validate *validator.Validate
}

// NewInputValidator creates a new input validator
func NewInputValidator() *InputValidator {
	return &InputValidator{validate: validator.New()}
}

// ValidateSlip returns the problems with in; an empty result means valid
func (v *InputValidator) ValidateSlip(in SlipInput) []string {
	var problems []string

	if !utf8.ValidString(in.RawText) {
		problems = append(problems, "slipText must be valid UTF-8")
	}

	if n := utf8.RuneCountInString(in.RawText); n > MaxSlipChars {
		problems = append(problems, fmt.Sprintf("slipText too long (%d chars, max %d)", n, MaxSlipChars))
	}

	if len(in.Legs) > MaxLegs {
		problems = append(problems, fmt.Sprintf("too many legs (%d, max %d)", len(in.Legs), MaxLegs))
	}

	for i, leg := range in.Legs {
		problems = append(problems, v.validateLeg(i, leg)...)
	}

	if in.Trusted != nil {
		problems = append(problems, v.structProblems("trustedContext.coverage", in.Trusted.Coverage)...)
	}

	return problems
}

// Validate wraps ValidateSlip problems in a *ValidationError
func (v *InputValidator) Validate(in SlipInput) error {
	if problems := v.ValidateSlip(in); len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func (v *InputValidator) validateLeg(index int, leg models.LegInput) []string {
	prefix := fmt.Sprintf("legs[%d]", index)
	problems := v.structProblems(prefix, leg)

	if strings.TrimSpace(leg.Selection) != "" && len(slip.FromParsed([]models.LegInput{leg})) == 0 {
		problems = append(problems, prefix+".selection has no usable text")
	}

	return problems
}

func (v *InputValidator) structProblems(prefix string, s interface{}) []string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{fmt.Sprintf("%s: %v", prefix, err)}
	}

	problems := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("%s.%s is required", prefix, lowerFirst(fe.Field())))
		case "oneof":
			problems = append(problems, fmt.Sprintf("%s.%s must be one of: %s", prefix, lowerFirst(fe.Field()), fe.Param()))
		default:
			problems = append(problems, fmt.Sprintf("%s.%s failed %s", prefix, lowerFirst(fe.Field()), fe.Tag()))
		}
	}
	return problems
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
