package flows

import (
	"errors"
	"testing"
)

func TestStore_OneActiveFlowPerCustomer(t *testing.T) {
	s := NewStore()

	first := &Instance{ID: "a", CustomerID: "cust-1", Status: StatusActive}
	if err := s.Put(first); err != nil {
		t.Fatalf("first put failed: %v", err)
	}

	second := &Instance{ID: "b", CustomerID: "cust-1", Status: StatusActive}
	if err := s.Put(second); !errors.Is(err, ErrFlowActive) {
		t.Fatalf("expected ErrFlowActive, got %v", err)
	}

	// A finished flow is replaced silently.
	first.Status = StatusCompleted
	if err := s.Put(second); err != nil {
		t.Fatalf("expected replacement of a finished flow, got %v", err)
	}

	got, ok := s.Get("cust-1")
	if !ok || got.ID != "b" {
		t.Fatalf("expected instance b, got %+v", got)
	}

	s.Drop("cust-1")
	if _, ok := s.Get("cust-1"); ok {
		t.Fatal("expected instance dropped")
	}
}

func TestStore_CustomersAreIsolated(t *testing.T) {
	s := NewStore()

	if err := s.Put(&Instance{ID: "a", CustomerID: "cust-1", Status: StatusActive}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := s.Put(&Instance{ID: "b", CustomerID: "cust-2", Status: StatusActive}); err != nil {
		t.Fatalf("expected no conflict across customers, got %v", err)
	}
}
