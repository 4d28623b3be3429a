package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"leadconsole/internal/model"
)

// Store owns the key-value backend and the two record collections on top of it.
type Store struct {
	// Dir is the data directory for file-backed backends (empty for memory/redis).
	Dir string
	KV  KV

	log   *zap.Logger
	leads *LeadStore
	opps  *OpportunityStore
}

type Options struct {
	Backend  Backend
	Dir      string
	RedisURL string
	Logger   *zap.Logger
}

func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".leadconsole"), nil
}

// Open opens the configured backend and wraps it.
func Open(ctx context.Context, opts Options) (*Store, error) {
	kv, err := OpenKV(ctx, KVOptions{Backend: opts.Backend, Dir: opts.Dir, RedisURL: opts.RedisURL})
	if err != nil {
		return nil, err
	}
	s := New(kv, opts.Logger)
	if opts.Backend == "" || opts.Backend == BackendSQLite || opts.Backend == BackendFile {
		s.Dir = opts.Dir
	}
	return s, nil
}

// New wraps an already-open backend. A nil logger discards log output.
func New(kv KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{KV: kv, log: log.With(zap.String("module", "store"))}
	s.leads = newLeadStore(kv, s)
	s.opps = newOpportunityStore(kv, s)
	return s
}

func (s *Store) Leads() *LeadStore                { return s.leads }
func (s *Store) Opportunities() *OpportunityStore { return s.opps }

func (s *Store) Close() error {
	if s == nil || s.KV == nil {
		return nil
	}
	return s.KV.Close()
}

// Batch holds working copies of both collections inside Store.Batch.
type Batch struct {
	Leads         []model.Lead
	Opportunities []model.Opportunity
}

func (b *Batch) FindLead(id int) (int, bool) {
	for i, l := range b.Leads {
		if l.ID == id {
			return i, true
		}
	}
	return -1, false
}

// AddOpportunity appends o, assigning an opp- id when it has none.
func (b *Batch) AddOpportunity(o model.Opportunity) (model.Opportunity, error) {
	o = o.Clone()
	if strings.TrimSpace(o.ID) == "" {
		id, err := newOpportunityID(b.Opportunities)
		if err != nil {
			return model.Opportunity{}, err
		}
		o.ID = id
	}
	b.Opportunities = append(b.Opportunities, o)
	return o.Clone(), nil
}

// Batch runs fn against working copies of both collections. If fn succeeds every record is
// validated and both slots are written with one SetMany; otherwise nothing changes.
func (s *Store) Batch(ctx context.Context, fn func(b *Batch) error) error {
	lc, oc := s.leads.c, s.opps.c
	lc.mu.Lock()
	defer lc.mu.Unlock()
	oc.mu.Lock()
	defer oc.mu.Unlock()

	if err := lc.loadLocked(ctx); err != nil {
		return err
	}
	if err := oc.loadLocked(ctx); err != nil {
		return err
	}
	b := &Batch{Leads: lc.copyItems(lc.items), Opportunities: oc.copyItems(oc.items)}
	if err := fn(b); err != nil {
		return err
	}
	for _, l := range b.Leads {
		if err := ValidateRecord(l); err != nil {
			return err
		}
	}
	for _, o := range b.Opportunities {
		if err := ValidateRecord(o); err != nil {
			return err
		}
	}

	leadsJSON, err := encodeItems(b.Leads)
	if err != nil {
		return err
	}
	oppsJSON, err := encodeItems(b.Opportunities)
	if err != nil {
		return err
	}
	if err := s.KV.SetMany(ctx, map[string]string{LeadsKey: leadsJSON, OpportunitiesKey: oppsJSON}); err != nil {
		s.log.Error("persist batch failed", zap.Error(err))
	}
	lc.items = b.Leads
	oc.items = b.Opportunities
	return nil
}

// ResetData deletes both collection slots; the next load reseeds.
func (s *Store) ResetData(ctx context.Context) error {
	if s.KV == nil {
		return errors.New("store not open")
	}
	if err := s.KV.Delete(ctx, LeadsKey, OpportunitiesKey); err != nil {
		return err
	}
	s.leads.c.reset()
	s.opps.c.reset()
	return nil
}
