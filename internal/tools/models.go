package tools

import (
	"fmt"
	"slices"

	"github.com/baalimago/qwery/internal/models"
)

type LLMTool interface {
	// Call the tool with the given Input. Returns output from the tool
	// or an error if the call returned an error-like.
	Call(models.Input) (string, error)

	// Specification is later on sent to the model so that it knows how
	// to call the tool
	Specification() models.Specification
}

type ValidationError struct {
	fieldsMissing []string
}

func NewValidationError(fieldsMissing []string) error {
	// Sort for deterministic error print
	slices.Sort(fieldsMissing)
	return ValidationError{fieldsMissing: fieldsMissing}
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("validation error, fields missing: %v", v.fieldsMissing)
}

// validate input against the specification's required fields
func validate(spec models.Specification, input models.Input) error {
	if spec.Inputs == nil {
		return nil
	}
	var missing []string
	for _, field := range spec.Inputs.Required {
		if _, ok := input[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return NewValidationError(missing)
	}
	return nil
}
