package service

import (
	"context"
	"testing"
)

func TestAPIKey_CreateAndVerify(t *testing.T) {
	repo := newStubRepo()
	svc := &APIKeyService{Repo: repo}

	item, err := svc.Create(context.Background(), "user-1", "test key")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(item.APIKey) != 32 {
		t.Fatalf("key length=%d", len(item.APIKey))
	}
	if !item.IsActive {
		t.Fatalf("new key not active")
	}

	got, err := svc.Verify(context.Background(), item.APIKey)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if got == nil || got.KeyID != item.KeyID {
		t.Fatalf("got=%+v", got)
	}
	if stored := repo.keys[item.KeyID]; stored.LastUsedAt == nil {
		t.Fatalf("last_used_at not touched")
	}
}

func TestAPIKey_VerifyUnknown(t *testing.T) {
	svc := &APIKeyService{Repo: newStubRepo()}
	got, err := svc.Verify(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if got != nil {
		t.Fatalf("got=%+v, want nil", got)
	}
}

func TestAPIKey_DeactivatedKeyRejected(t *testing.T) {
	repo := newStubRepo()
	svc := &APIKeyService{Repo: repo}

	item, err := svc.Create(context.Background(), "user-1", "test key")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	ok, err := svc.Deactivate(context.Background(), item.KeyID)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	got, err := svc.Verify(context.Background(), item.APIKey)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if got != nil {
		t.Fatalf("deactivated key verified")
	}

	ok, err = svc.Deactivate(context.Background(), "missing")
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v for unknown key", ok, err)
	}
}
