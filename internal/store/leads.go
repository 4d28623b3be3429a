package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"leadconsole/internal/model"
)

//go:embed seed/leads.json
var leadsSeed []byte

// LeadStore is the persisted lead collection (slot "leadsData").
type LeadStore struct {
	c *collection[model.Lead, int]
}

func newLeadStore(kv KV, s *Store) *LeadStore {
	return &LeadStore{c: &collection[model.Lead, int]{
		key:   LeadsKey,
		kv:    kv,
		log:   s.log,
		idOf:  func(l model.Lead) int { return l.ID },
		clone: func(l model.Lead) model.Lead { return l },
		seed:  SeedLeads,
	}}
}

// SeedLeads decodes the embedded lead data.
func SeedLeads() ([]model.Lead, error) {
	var out []model.Lead
	if err := json.Unmarshal(leadsSeed, &out); err != nil {
		return nil, fmt.Errorf("decode lead seed: %w", err)
	}
	return out, nil
}

func (s *LeadStore) Load(ctx context.Context) ([]model.Lead, error) {
	return s.c.all(ctx)
}

func (s *LeadStore) Find(ctx context.Context, id int) (model.Lead, bool, error) {
	return s.c.find(ctx, id)
}

// Update merges p over the lead with the given id and persists it. A missing id returns
// ok=false with no write; an invalid merge returns ok=true with the validation error and no write.
func (s *LeadStore) Update(ctx context.Context, id int, p model.LeadPatch) (model.Lead, bool, error) {
	return s.c.update(ctx, id, p.Apply)
}

// Create assigns the next id. Status defaults to new.
func (s *LeadStore) Create(ctx context.Context, l model.Lead) (model.Lead, error) {
	l.Name = strings.TrimSpace(l.Name)
	l.Email = strings.TrimSpace(l.Email)
	if l.Status == "" {
		l.Status = model.LeadStatusNew
	}
	return s.c.create(ctx, func(existing []model.Lead) (model.Lead, error) {
		l.ID = nextLeadID(existing)
		return l, nil
	})
}

func (s *LeadStore) Remove(ctx context.Context, id int) (bool, error) {
	return s.c.remove(ctx, id)
}
