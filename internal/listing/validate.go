package listing

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "staybnb/internal/errors"
)

type Step int

const (
	StepBasicInfo Step = iota
	StepLocation
	StepCapacity
	StepPricing
	StepDetails
	StepImages
)

// Steps lists the wizard steps in order.
var Steps = []Step{StepBasicInfo, StepLocation, StepCapacity, StepPricing, StepDetails, StepImages}

func (s Step) String() string {
	switch s {
	case StepBasicInfo:
		return "basic info"
	case StepLocation:
		return "location"
	case StepCapacity:
		return "capacity"
	case StepPricing:
		return "pricing"
	case StepDetails:
		return "amenities & rules"
	case StepImages:
		return "images"
	}
	return fmt.Sprintf("step %d", int(s))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStep checks the part of the draft that belongs to step, after trimming
// its text the way Normalize does. A nil map means the step is valid.
func ValidateStep(step Step, d Draft) apperrors.FieldErrors {
	d = d.trimmed()
	var target interface{}
	switch step {
	case StepBasicInfo:
		target = d.Basic
	case StepLocation:
		target = d.Location
	case StepCapacity:
		target = d.Capacity
	case StepPricing:
		target = d.Pricing
	case StepDetails:
		target = d.Details
	case StepImages:
		target = d.Images
	default:
		return apperrors.FieldErrors{"step": "unknown step"}
	}

	fields := toFieldErrors(validate.Struct(target))
	if step == StepCapacity && d.Capacity.Beds < d.Capacity.Bedrooms {
		if fields == nil {
			fields = apperrors.FieldErrors{}
		}
		fields["beds"] = "must be at least the number of bedrooms"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ValidateAll runs every step and returns the first failure, tagged with its step.
func ValidateAll(d Draft) (Step, apperrors.FieldErrors) {
	for _, s := range Steps {
		if errs := ValidateStep(s, d); errs != nil {
			return s, errs
		}
	}
	return StepImages, nil
}

// ValidateInput validates a flat payload with the same rules as the form.
func ValidateInput(in Input) error {
	if _, errs := ValidateAll(DraftFromInput(in)); errs != nil {
		return apperrors.NewValidationError(errs)
	}
	return nil
}

func toFieldErrors(err error) apperrors.FieldErrors {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.FieldErrors{"form": err.Error()}
	}
	out := apperrors.FieldErrors{}
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must have at least %s items", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must have at most %s items", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	}
	return "is invalid"
}
