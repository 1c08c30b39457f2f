package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kripanshu-singh/congkong-livescore/scoring"
)

var (
	ErrScoringLocked = errors.New("scoring is locked for this judge")
	ErrUnknownTeam   = errors.New("unknown team")
	ErrUnknownJudge  = errors.New("unknown judge")
	ErrScoreNotFound = errors.New("score record not found")
	ErrUnknownCode   = errors.New("unknown voting code")
	ErrCodeUsed      = errors.New("voting code already used")
	ErrInvalidBallot = errors.New("invalid ballot")
)

// ValidationError lists rejected input fields with a reason per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range sortedKeys(e.Fields) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// validationFrom converts validator and detail errors into a ValidationError.
// Other errors are returned unchanged.
func validationFrom(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &ValidationError{Fields: make(map[string]string, len(verrs))}
		for _, fe := range verrs {
			out.Fields[fe.Field()] = fe.Tag()
		}
		return out
	}
	return err
}

func detailValidation(errs []*scoring.DetailError) *ValidationError {
	out := &ValidationError{Fields: make(map[string]string, len(errs))}
	for _, e := range errs {
		out.Fields["detail."+e.CriterionID] = e.Error()
	}
	return out
}

// PersistenceError marks a failed storage write. The in-memory state is left
// as it was before the operation, so the caller may retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
