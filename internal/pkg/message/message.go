// Package message provides the structured commit message, its validation and
// its git serialization for lazycommit.
package message

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ValidCommitTypes contains the recognized Conventional Commits types.
var ValidCommitTypes = []string{
	"feat", "fix", "docs", "style", "refactor",
	"perf", "test", "build", "ci", "chore", "revert",
}

// MaxSubjectLength is the recommended maximum length for the header line.
const MaxSubjectLength = 72

// CommitMessage is a conventional commit message as produced by the model.
type CommitMessage struct {
	Type  string `json:"type" validate:"required,committype"`
	Scope string `json:"scope,omitempty" validate:"omitempty,commitscope"`
	Title string `json:"title" validate:"required,singleline"`
	Body  string `json:"body,omitempty"`
}

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q %s", e.Field, e.Message)
}

// ValidationErrors is every problem found in one message.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i := range e {
		msgs[i] = e[i].Error()
	}
	return strings.Join(msgs, "; ")
}

var (
	validate = newValidator()

	scopeForbidden = regexp.MustCompile(`[()\r\n]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("committype", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		// Any Unicode space, \v and NBSP included.
		return s == strings.ToLower(s) &&
			!strings.ContainsAny(s, ":()") &&
			strings.IndexFunc(s, unicode.IsSpace) < 0
	})
	_ = v.RegisterValidation("commitscope", func(fl validator.FieldLevel) bool {
		return !scopeForbidden.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	return v
}

// Normalize trims every field, lower-cases the type, strips any parentheses
// around the scope and collapses the title onto one line.
func (cm *CommitMessage) Normalize() {
	cm.Type = strings.ToLower(strings.TrimSpace(cm.Type))
	cm.Scope = strings.TrimSpace(cm.Scope)
	if strings.HasPrefix(cm.Scope, "(") && strings.HasSuffix(cm.Scope, ")") {
		cm.Scope = strings.TrimSpace(cm.Scope[1 : len(cm.Scope)-1])
	}
	cm.Title = strings.TrimSpace(whitespaceRun.ReplaceAllString(cm.Title, " "))
	cm.Body = strings.TrimSpace(cm.Body)
}

// Validate reports every field that breaks the message rules.
func (cm *CommitMessage) Validate() error {
	err := validate.Struct(cm)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "committype":
		return fmt.Sprintf("must be a single lower-case word without spaces, colons or parentheses, got %q", fe.Value())
	case "commitscope":
		return fmt.Sprintf("must not contain parentheses or line breaks, got %q", fe.Value())
	case "singleline":
		return "must be a single line"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Warnings returns non-fatal remarks about a valid message.
func (cm *CommitMessage) Warnings() []string {
	var warnings []string
	if !IsValidCommitType(cm.Type) {
		warnings = append(warnings, fmt.Sprintf(
			"commit type %q is not a standard type (%s)", cm.Type, strings.Join(ValidCommitTypes, ", ")))
	}
	if header := cm.Header(); len(header) > MaxSubjectLength {
		warnings = append(warnings, fmt.Sprintf(
			"header exceeds %d characters (%d chars)", MaxSubjectLength, len(header)))
	}
	return warnings
}

// Header formats "type(scope): title", or "type: title" without a scope.
func (cm *CommitMessage) Header() string {
	if cm.Scope != "" {
		return cm.Type + "(" + cm.Scope + "): " + cm.Title
	}
	return cm.Type + ": " + cm.Title
}

// GitString returns the message exactly as it is passed to git commit.
func (cm *CommitMessage) GitString() string {
	if cm.Body == "" {
		return cm.Header()
	}
	return cm.Header() + "\n\n" + cm.Body
}

// HasBody returns true if the commit message has a body section.
func (cm *CommitMessage) HasBody() bool {
	return cm.Body != ""
}

// IsValidCommitType checks if the given type is a recognized Conventional Commits type.
func IsValidCommitType(commitType string) bool {
	return slices.Contains(ValidCommitTypes, commitType)
}

// headerRegex matches "<type>(<scope>): <title>" and "<type>: <title>".
var headerRegex = regexp.MustCompile(`^([^\s:()]+)(?:\(([^()\r\n]*)\))?: (.+)$`)

// ParseGitMessage parses a git commit message produced by GitString.
func ParseGitMessage(text string) (*CommitMessage, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil, errors.New("empty commit message")
	}

	header, rest, _ := strings.Cut(text, "\n")
	matches := headerRegex.FindStringSubmatch(strings.TrimSpace(header))
	if matches == nil {
		return nil, fmt.Errorf("header %q is not in conventional commit form", header)
	}

	cm := &CommitMessage{
		Type:  matches[1],
		Scope: matches[2],
		Title: matches[3],
		Body:  strings.TrimSpace(rest),
	}
	cm.Normalize()
	if err := cm.Validate(); err != nil {
		return nil, err
	}
	return cm, nil
}
