package listing

import (
	"context"
	"errors"

	"staybnb/internal/db"
	apperrors "staybnb/internal/errors"
)

var (
	ErrNotLastStep      = errors.New("submit is only available on the last step")
	ErrAlreadySubmitted = errors.New("draft already submitted")
)

// Submitter performs the single call that persists a finished draft.
type Submitter interface {
	CreateProperty(ctx context.Context, in Input) (*db.Property, error)
	UpdateProperty(ctx context.Context, id int, in Input) (*db.Property, error)
}

// Wizard walks a Draft through the form steps.
type Wizard struct {
	Draft     Draft
	step      int
	errors    apperrors.FieldErrors
	submitted bool
}

// NewWizard starts a blank form.
func NewWizard() *Wizard {
	return &Wizard{}
}

// EditWizard starts the form pre-filled from an existing property.
func EditWizard(p db.Property) *Wizard {
	return &Wizard{Draft: DraftFromProperty(p)}
}

func (w *Wizard) Step() Step { return Steps[w.step] }

func (w *Wizard) IsLast() bool { return w.step == len(Steps)-1 }

func (w *Wizard) Errors() apperrors.FieldErrors { return w.errors }

// Next advances when the current step validates. Otherwise it stays put and
// returns the field errors.
func (w *Wizard) Next() apperrors.FieldErrors {
	w.errors = ValidateStep(w.Step(), w.Draft)
	if w.errors != nil {
		return w.errors
	}
	if !w.IsLast() {
		w.step++
	}
	return nil
}

// Back moves one step back without validating.
func (w *Wizard) Back() {
	w.errors = nil
	if w.step > 0 {
		w.step--
	}
}

// Submit validates the whole draft and sends it in one call: update when the draft
// was loaded from a property, create otherwise.
func (w *Wizard) Submit(ctx context.Context, s Submitter) (*db.Property, error) {
	if w.submitted {
		return nil, ErrAlreadySubmitted
	}
	if !w.IsLast() {
		return nil, ErrNotLastStep
	}
	step, errs := ValidateAll(w.Draft)
	if errs != nil {
		w.step = indexOf(step)
		w.errors = errs
		return nil, apperrors.NewValidationError(errs)
	}
	w.errors = nil

	in := w.Draft.Normalize()
	var (
		p   *db.Property
		err error
	)
	if w.Draft.PropertyID != 0 {
		p, err = s.UpdateProperty(ctx, w.Draft.PropertyID, in)
	} else {
		p, err = s.CreateProperty(ctx, in)
	}
	if err != nil {
		return nil, err
	}
	w.submitted = true
	return p, nil
}

func indexOf(step Step) int {
	for i, s := range Steps {
		if s == step {
			return i
		}
	}
	return 0
}
