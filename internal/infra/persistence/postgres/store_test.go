package postgres

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
)

func TestNewStoreOpenError(t *testing.T) {
	sentinel := errors.New("dial refused")
	restore := OverrideSQLOpen(func(driver, dsn string) (*sql.DB, error) {
		if driver != defaultDriver {
			t.Fatalf("expected driver %q, got %q", defaultDriver, driver)
		}
		return nil, sentinel
	})
	defer restore()

	if _, err := NewStore("postgres://example/app", nil); !errors.Is(err, sentinel) {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestNewStoreDefaultsDSN(t *testing.T) {
	var captured string
	restore := OverrideSQLOpen(func(_, dsn string) (*sql.DB, error) {
		captured = dsn
		return nil, errors.New("stop before ping")
	})
	defer restore()

	_, _ = NewStore("", nil)
	if !strings.Contains(captured, "obracore") {
		t.Fatalf("expected default dsn, got %q", captured)
	}
}
