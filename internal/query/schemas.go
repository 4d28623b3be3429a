package query

import "leadconsole/internal/model"

var LeadSchema = Schema[model.Lead]{
	Text: map[string]func(model.Lead) string{
		"name":    func(l model.Lead) string { return l.Name },
		"company": func(l model.Lead) string { return l.Company },
		"email":   func(l model.Lead) string { return l.Email },
	},
	Enum: map[string]func(model.Lead) string{
		"status": func(l model.Lead) string { return string(l.Status) },
	},
	Sort: []SortKey[model.Lead]{
		{Field: "score", Value: func(l model.Lead) float64 { return float64(l.Score) }},
	},
}

// OpportunitySchema sorts an unknown amount as 0.
var OpportunitySchema = Schema[model.Opportunity]{
	Text: map[string]func(model.Opportunity) string{
		"name":        func(o model.Opportunity) string { return o.Name },
		"accountName": func(o model.Opportunity) string { return o.AccountName },
	},
	Enum: map[string]func(model.Opportunity) string{
		"stage": func(o model.Opportunity) string { return string(o.Stage) },
	},
	Sort: []SortKey[model.Opportunity]{
		{Field: "amount", Value: func(o model.Opportunity) float64 {
			if o.Amount == nil {
				return 0
			}
			return *o.Amount
		}},
	},
}
