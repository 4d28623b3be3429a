package mutate

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"leadconsole/internal/model"
	"leadconsole/internal/statusutil"
	"leadconsole/internal/store"
)

func ValidateOpportunityEdit(_ model.Opportunity, draft model.Opportunity) error {
	if !statusutil.ValidStage(draft.Stage) {
		return ValidationError{Field: "stage", Message: fmt.Sprintf("%s: %q", ErrInvalidStage, draft.Stage)}
	}
	if a := draft.Amount; a != nil {
		if math.IsNaN(*a) || math.IsInf(*a, 0) {
			return ValidationError{Field: "amount", Message: "Amount must be a number."}
		}
		if *a < 0 {
			return ValidationError{Field: "amount", Message: "Amount cannot be negative."}
		}
	}
	return nil
}

// ParseAmount reads an amount typed by a user. Blank means unknown (nil); "$" and
// thousands separators are accepted.
func ParseAmount(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "n/a") {
		return nil, nil
	}
	clean := strings.NewReplacer("$", "", ",", "", "_", "").Replace(s)
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, ValidationError{Field: "amount", Message: "Amount must be a number."}
	}
	return &v, nil
}

// OpportunityEditPatch is the patch a row edit commits: only stage and amount.
func OpportunityEditPatch(draft model.Opportunity) model.OpportunityPatch {
	stage := draft.Stage
	p := model.OpportunityPatch{Stage: &stage}
	if draft.Amount == nil {
		p.ClearAmount = true
	} else {
		v := *draft.Amount
		p.Amount = &v
	}
	return p
}

func SaveOpportunityEdit(ctx context.Context, opps *store.OpportunityStore, original, draft model.Opportunity) (model.Opportunity, bool, error) {
	if err := ValidateOpportunityEdit(original, draft); err != nil {
		return model.Opportunity{}, true, err
	}
	return opps.Update(ctx, original.ID, OpportunityEditPatch(draft))
}

func OpportunityCommitter(opps *store.OpportunityStore) func(ctx context.Context, original, draft model.Opportunity) (model.Opportunity, bool, error) {
	return func(ctx context.Context, original, draft model.Opportunity) (model.Opportunity, bool, error) {
		return SaveOpportunityEdit(ctx, opps, original, draft)
	}
}
