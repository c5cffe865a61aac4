package core

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenPersistentStoreMemory(t *testing.T) {
	t.Setenv("OBRACORE_STORAGE_DRIVER", "memory")
	store, err := OpenPersistentStore(NewRulesEngine())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc := NewService(store)
	if _, _, err := svc.CreateUser(context.Background(), User{Email: "a@b.c"}); err != nil {
		t.Fatalf("create user through opened store: %v", err)
	}
}

func TestOpenPersistentStoreSQLitePath(t *testing.T) {
	t.Setenv("OBRACORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("OBRACORE_SQLITE_PATH", filepath.Join(t.TempDir(), "state.db"))
	store, err := OpenPersistentStore(NewRulesEngine())
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateUnit(Unit{Name: "meter", Symbol: "m"})
		return err
	}); err != nil {
		t.Fatalf("write through sqlite store: %v", err)
	}
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	t.Setenv("OBRACORE_STORAGE_DRIVER", "etcd")
	if _, err := OpenPersistentStore(NewRulesEngine()); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
