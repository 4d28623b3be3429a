package mutate

import (
	"context"
	"strconv"
	"strings"

	"leadconsole/internal/model"
	"leadconsole/internal/statusutil"
	"leadconsole/internal/store"
)

const invalidEmailMessage = "Please enter a valid email address."

func ValidateEmail(email string) error {
	if !store.ValidEmail(strings.TrimSpace(email)) {
		return ValidationError{Field: "email", Message: invalidEmailMessage}
	}
	return nil
}

// ValidateLeadEdit checks the fields a row edit may change (email, status). Conversion is a
// separate action: an edit can neither pick "converted" nor move a converted lead elsewhere.
func ValidateLeadEdit(original, draft model.Lead) error {
	if err := ValidateEmail(draft.Email); err != nil {
		return err
	}
	if !statusutil.ValidLeadStatus(draft.Status) {
		return ValidationError{Field: "status", Message: ErrInvalidStatus.Error() + ": " + string(draft.Status)}
	}
	if draft.Status == original.Status {
		return nil
	}
	if original.Status == model.LeadStatusConverted {
		return ValidationError{Field: "status", Message: "a converted lead's status cannot change"}
	}
	if draft.Status == model.LeadStatusConverted {
		return ValidationError{Field: "status", Message: "use convert to turn a lead into an opportunity"}
	}
	return nil
}

// LeadEditPatch is the patch a row edit commits: only email and status.
func LeadEditPatch(draft model.Lead) model.LeadPatch {
	email := strings.TrimSpace(draft.Email)
	status := draft.Status
	return model.LeadPatch{Email: &email, Status: &status}
}

// SaveLeadEdit validates and writes a lead row edit.
func SaveLeadEdit(ctx context.Context, leads *store.LeadStore, original, draft model.Lead) (model.Lead, bool, error) {
	if err := ValidateLeadEdit(original, draft); err != nil {
		return model.Lead{}, true, err
	}
	return leads.Update(ctx, original.ID, LeadEditPatch(draft))
}

// LeadCommitter adapts SaveLeadEdit to an edit session's commit hook.
func LeadCommitter(leads *store.LeadStore) func(ctx context.Context, original, draft model.Lead) (model.Lead, bool, error) {
	return func(ctx context.Context, original, draft model.Lead) (model.Lead, bool, error) {
		return SaveLeadEdit(ctx, leads, original, draft)
	}
}

func leadNotFound(id int) NotFoundError {
	return NotFoundError{Kind: "lead", ID: strconv.Itoa(id)}
}
