package model

type LeadStatus string

const (
	LeadStatusNew          LeadStatus = "new"
	LeadStatusContacted    LeadStatus = "contacted"
	LeadStatusQualified    LeadStatus = "qualified"
	LeadStatusConverted    LeadStatus = "converted"
	LeadStatusDisqualified LeadStatus = "disqualified"
)

// LeadStatuses lists every lead status in pipeline order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusConverted,
	LeadStatusDisqualified,
}

type Stage string

const (
	StageProspecting  Stage = "Prospecting"
	StageProposalSent Stage = "Proposal Sent"
	StageNegotiation  Stage = "Negotiation"
	StageClosedWon    Stage = "Closed Won"
	StageClosedLost   Stage = "Closed Lost"
)

// Stages lists every opportunity stage; the first entry is where converted leads enter the pipeline.
var Stages = []Stage{
	StageProspecting,
	StageProposalSent,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

type Lead struct {
	ID      int        `json:"id"`
	Name    string     `json:"name" validate:"required"`
	Company string     `json:"company"`
	Email   string     `json:"email" validate:"leademail"`
	Source  string     `json:"source"`
	Score   int        `json:"score"`
	Status  LeadStatus `json:"status" validate:"leadstatus"`
}

type Opportunity struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"required"`
	AccountName string   `json:"accountName"`
	Amount      *float64 `json:"amount" validate:"omitnil,gte=0"`
	Stage       Stage    `json:"stage" validate:"stage"`
}

// LeadPatch is a shallow partial update. Nil fields are left unchanged.
type LeadPatch struct {
	Name    *string     `json:"name,omitempty"`
	Company *string     `json:"company,omitempty"`
	Email   *string     `json:"email,omitempty"`
	Source  *string     `json:"source,omitempty"`
	Score   *int        `json:"score,omitempty"`
	Status  *LeadStatus `json:"status,omitempty"`
}

// Apply returns a copy of l with the patch merged over it.
func (p LeadPatch) Apply(l Lead) Lead {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Company != nil {
		l.Company = *p.Company
	}
	if p.Email != nil {
		l.Email = *p.Email
	}
	if p.Source != nil {
		l.Source = *p.Source
	}
	if p.Score != nil {
		l.Score = *p.Score
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	return l
}

func (p LeadPatch) IsEmpty() bool {
	return p == LeadPatch{}
}

// OpportunityPatch is a shallow partial update. ClearAmount resets the amount to unknown
// and wins over Amount.
type OpportunityPatch struct {
	Name        *string  `json:"name,omitempty"`
	AccountName *string  `json:"accountName,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	ClearAmount bool     `json:"clearAmount,omitempty"`
	Stage       *Stage   `json:"stage,omitempty"`
}

func (p OpportunityPatch) Apply(o Opportunity) Opportunity {
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.AccountName != nil {
		o.AccountName = *p.AccountName
	}
	switch {
	case p.ClearAmount:
		o.Amount = nil
	case p.Amount != nil:
		v := *p.Amount
		o.Amount = &v
	}
	if p.Stage != nil {
		o.Stage = *p.Stage
	}
	return o
}

func (p OpportunityPatch) IsEmpty() bool {
	return p == OpportunityPatch{}
}

// Clone returns a deep copy (the amount pointer is not shared).
func (o Opportunity) Clone() Opportunity {
	if o.Amount != nil {
		v := *o.Amount
		o.Amount = &v
	}
	return o
}

func Ptr[T any](v T) *T { return &v }
