package mutate

import (
	"context"

	"leadconsole/internal/model"
	"leadconsole/internal/statusutil"
	"leadconsole/internal/store"
)

type ConvertResult struct {
	Lead        model.Lead
	Opportunity model.Opportunity
}

// ConvertLead marks the lead converted and opens an opportunity for it, in one batch:
// either both records are written or neither is.
func ConvertLead(ctx context.Context, st *store.Store, leadID int) (ConvertResult, error) {
	var res ConvertResult
	err := st.Batch(ctx, func(b *store.Batch) error {
		i, ok := b.FindLead(leadID)
		if !ok {
			return leadNotFound(leadID)
		}
		lead := b.Leads[i]
		if lead.Status == model.LeadStatusConverted {
			return ErrAlreadyConverted
		}
		lead.Status = model.LeadStatusConverted
		b.Leads[i] = lead

		opp, err := b.AddOpportunity(model.Opportunity{
			Name:        lead.Name,
			AccountName: lead.Company,
			Stage:       statusutil.FirstStage(),
			Amount:      nil,
		})
		if err != nil {
			return err
		}
		res = ConvertResult{Lead: lead, Opportunity: opp}
		return nil
	})
	if err != nil {
		return ConvertResult{}, err
	}
	return res, nil
}
