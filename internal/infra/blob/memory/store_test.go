package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"obracore/internal/blob/core"
)

func TestMemoryStoreIsolation(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.Put(ctx, "k1", strings.NewReader("data"), core.PutOptions{Metadata: map[string]string{"a": "b"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, rc, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "data" {
		t.Fatalf("unexpected body %q", body)
	}
	// Mutating the returned metadata must not leak into the store.
	info.Metadata["a"] = "mutated"
	again, err := store.Head(ctx, "k1")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if again.Metadata["a"] != "b" {
		t.Fatalf("expected metadata isolation, got %q", again.Metadata["a"])
	}
}

func TestMemoryStoreListAndDelete(t *testing.T) {
	store := New()
	ctx := context.Background()
	for _, key := range []string{"p/1", "p/2", "q/1"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "p/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(infos))
	}
	existed, err := store.Delete(ctx, "p/1")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	if _, err := store.Head(ctx, "p/1"); err == nil {
		t.Fatalf("expected head to fail after delete")
	}
	if _, err := store.PresignURL(ctx, "p/2", core.SignedURLOptions{}); err != core.ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
