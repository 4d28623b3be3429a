package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"leadconsole/internal/model"
)

//go:embed seed/opportunities.json
var opportunitiesSeed []byte

// OpportunityStore is the persisted opportunity collection (slot "opportunitiesData").
type OpportunityStore struct {
	c *collection[model.Opportunity, string]
}

func newOpportunityStore(kv KV, s *Store) *OpportunityStore {
	return &OpportunityStore{c: &collection[model.Opportunity, string]{
		key:   OpportunitiesKey,
		kv:    kv,
		log:   s.log,
		idOf:  func(o model.Opportunity) string { return o.ID },
		clone: model.Opportunity.Clone,
		seed:  SeedOpportunities,
	}}
}

func SeedOpportunities() ([]model.Opportunity, error) {
	var out []model.Opportunity
	if err := json.Unmarshal(opportunitiesSeed, &out); err != nil {
		return nil, fmt.Errorf("decode opportunity seed: %w", err)
	}
	return out, nil
}

func (s *OpportunityStore) Load(ctx context.Context) ([]model.Opportunity, error) {
	return s.c.all(ctx)
}

func (s *OpportunityStore) Find(ctx context.Context, id string) (model.Opportunity, bool, error) {
	return s.c.find(ctx, strings.TrimSpace(id))
}

func (s *OpportunityStore) Update(ctx context.Context, id string, p model.OpportunityPatch) (model.Opportunity, bool, error) {
	return s.c.update(ctx, strings.TrimSpace(id), p.Apply)
}

// Create assigns a random opp- id when o.ID is empty. Stage defaults to the first pipeline stage.
func (s *OpportunityStore) Create(ctx context.Context, o model.Opportunity) (model.Opportunity, error) {
	o = o.Clone()
	o.Name = strings.TrimSpace(o.Name)
	if o.Stage == "" {
		o.Stage = model.StageProspecting
	}
	return s.c.create(ctx, func(existing []model.Opportunity) (model.Opportunity, error) {
		if o.ID == "" {
			id, err := newOpportunityID(existing)
			if err != nil {
				return model.Opportunity{}, err
			}
			o.ID = id
		} else if opportunityIDExists(existing, o.ID) {
			return model.Opportunity{}, fmt.Errorf("opportunity %s already exists", o.ID)
		}
		return o, nil
	})
}

func (s *OpportunityStore) Remove(ctx context.Context, id string) (bool, error) {
	return s.c.remove(ctx, strings.TrimSpace(id))
}
