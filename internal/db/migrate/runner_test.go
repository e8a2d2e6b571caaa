package migrate

import (
	"errors"
	"strings"
	"testing"
)

func TestRun_EmptyDSN(t *testing.T) {
	err := Run("", "up")
	if err == nil {
		t.Fatal("Run with empty DSN should return error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error = %q, should mention DATABASE_URL", err.Error())
	}
}

func TestUpDown_EmptyDSN(t *testing.T) {
	if err := Up(""); err == nil {
		t.Error("Up with empty DSN should return error")
	}
	if err := Down(""); err == nil {
		t.Error("Down with empty DSN should return error")
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	testCases := []string{"", "invalid", "UP", "Up", "sideways"}
	for _, direction := range testCases {
		t.Run("direction "+direction, func(t *testing.T) {
			err := Run("postgres://localhost/test", direction)
			if err == nil {
				t.Errorf("Run with direction %q should return error", direction)
			}
			if !strings.Contains(err.Error(), "direction") {
				t.Errorf("error = %q, should mention direction", err.Error())
			}
		})
	}
}

func TestRun_InvalidDSN(t *testing.T) {
	testCases := []struct {
		name string
		dsn  string
	}{
		{"invalid format", "invalid-dsn"},
		{"missing driver", "://localhost/test"},
		{"malformed", "postgres://"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Run(tc.dsn, "up"); err == nil {
				t.Errorf("Run with invalid DSN %q should return error", tc.dsn)
			}
		})
	}
}

func TestErrNoChange(t *testing.T) {
	if ErrNoChange == nil {
		t.Fatal("ErrNoChange should not be nil")
	}
	if !errors.Is(ErrNoChange, ErrNoChange) {
		t.Error("ErrNoChange should be errors.Is compatible")
	}
}
