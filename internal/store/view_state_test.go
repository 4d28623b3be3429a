package store

import (
	"context"
	"reflect"
	"testing"
)

func TestViewState_SaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(NewMemoryKV(), nil)

	// Missing snapshot => not found.
	st0, ok, err := s.LoadViewState(ctx, "leads")
	if err != nil {
		t.Fatalf("LoadViewState: %v", err)
	}
	if ok || st0 != nil {
		t.Fatalf("expected no snapshot; got %#v", st0)
	}

	want := &ViewState{
		Version: 1,
		Filters: map[string]string{"name": "chen", "status": "qualified"},
		Sorting: SortDesc,
		Page:    3,
	}
	if err := s.SaveViewState(ctx, "leads", want); err != nil {
		t.Fatalf("SaveViewState: %v", err)
	}
	got, ok, err := s.LoadViewState(ctx, "leads")
	if err != nil || !ok {
		t.Fatalf("LoadViewState (after save): ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("roundtrip mismatch:\nwant: %#v\ngot:  %#v", want, got)
	}

	// Snapshots are per data key.
	if _, ok, _ := s.LoadViewState(ctx, "opportunities"); ok {
		t.Fatalf("opportunities must not see the leads snapshot")
	}

	if err := s.ClearViewState(ctx, "leads"); err != nil {
		t.Fatalf("ClearViewState: %v", err)
	}
	if _, ok, _ := s.LoadViewState(ctx, "leads"); ok {
		t.Fatalf("expected snapshot to be gone after clear")
	}
}

func TestViewState_CorruptOrPartialSnapshots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := NewMemoryKV()
	s := New(kv, nil)

	_ = kv.Set(ctx, ViewStateKey("leads"), "not json")
	if st, ok, err := s.LoadViewState(ctx, "leads"); err != nil || ok || st != nil {
		t.Fatalf("corrupt snapshot: st=%#v ok=%v err=%v", st, ok, err)
	}

	_ = kv.Set(ctx, ViewStateKey("leads"), `{"sorting":"sideways","page":0}`)
	st, ok, err := s.LoadViewState(ctx, "leads")
	if err != nil || !ok {
		t.Fatalf("partial snapshot: ok=%v err=%v", ok, err)
	}
	want := DefaultViewState()
	if !reflect.DeepEqual(want, st) {
		t.Fatalf("partial snapshot should normalize to defaults:\nwant: %#v\ngot:  %#v", want, st)
	}
}

func TestViewStateKey(t *testing.T) {
	t.Parallel()
	if got := ViewStateKey("opportunities"); got != "tableState-opportunities" {
		t.Fatalf("ViewStateKey = %q", got)
	}
}
