package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/voiceagent/example-agent/internal/store"
	"github.com/voiceagent/example-agent/pkg/models"
)

func TestGetRegistration_Empty(t *testing.T) {
	s := store.NewMemoryStore("example")

	_, err := s.GetRegistration(context.Background())
	var nf *store.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("GetRegistration() error = %v, want *ErrNotFound", err)
	}
	if nf.Key != "example" {
		t.Errorf("ErrNotFound.Key = %q, want %q", nf.Key, "example")
	}
}

func TestSaveAndGetRegistration(t *testing.T) {
	s := store.NewMemoryStore("example")
	ctx := context.Background()

	reg := &models.Registration{ID: "h1", Name: "example", AddressID: "a1", Address: "/public/example"}
	if err := s.SaveRegistration(ctx, reg); err != nil {
		t.Fatalf("SaveRegistration() error = %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	reg.Address = "changed"

	got, err := s.GetRegistration(ctx)
	if err != nil {
		t.Fatalf("GetRegistration() error = %v", err)
	}
	if got.Address != "/public/example" {
		t.Errorf("GetRegistration().Address = %q, want %q", got.Address, "/public/example")
	}
	if !got.Ready() {
		t.Error("GetRegistration().Ready() = false, want true")
	}
}

func TestSaveRegistration_StoresCopy(t *testing.T) {
	s := store.NewMemoryStore("example")
	ctx := context.Background()

	reg := &models.Registration{ID: "h1", Address: "/public/example"}
	if err := s.SaveRegistration(ctx, reg); err != nil {
		t.Fatalf("SaveRegistration() error = %v", err)
	}
	reg.Address = "/public/changed"

	got, err := s.GetRegistration(ctx)
	if err != nil {
		t.Fatalf("GetRegistration() error = %v", err)
	}
	got.ID = "mutated"
	if got.Address != "/public/example" {
		t.Errorf("GetRegistration().Address = %q, want %q", got.Address, "/public/example")
	}

	again, _ := s.GetRegistration(ctx)
	if again.ID != "h1" {
		t.Errorf("GetRegistration().ID = %q, want %q", again.ID, "h1")
	}
}
