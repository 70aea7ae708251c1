package model

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	for _, st := range Statuses {
		got, err := ParseStatus(string(st))
		if err != nil {
			t.Errorf("ParseStatus(%q): %v", st, err)
		}
		if got != st {
			t.Errorf("ParseStatus(%q) = %q", st, got)
		}
	}

	for _, bad := range []string{"", "accepte", "en_attente", "ACCEPTED"} {
		_, err := ParseStatus(bad)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ParseStatus(%q) error = %v, want ErrInvalidInput", bad, err)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusAccepted, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusReturned, false},
		{StatusAccepted, StatusRejected, true},
		{StatusAccepted, StatusReturned, true},
		{StatusAccepted, StatusPending, false},
		{StatusAccepted, StatusAccepted, true},
		{StatusRejected, StatusAccepted, true},
		{StatusRejected, StatusPending, true},
		{StatusReturned, StatusAccepted, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminalAndActive(t *testing.T) {
	if !StatusReturned.Terminal() || !StatusCancelled.Terminal() {
		t.Error("returned and cancelled should be terminal")
	}
	if StatusPending.Terminal() || StatusRejected.Terminal() {
		t.Error("pending and rejected should not be terminal")
	}
	if !StatusPending.Active() || !StatusAccepted.Active() {
		t.Error("pending and accepted should be active")
	}
	if StatusRejected.Active() {
		t.Error("rejected should not be active")
	}
}

func TestAdjustmentFor(t *testing.T) {
	tests := []struct {
		from, to Status
		want     Adjustment
	}{
		{StatusPending, StatusAccepted, AdjustDecrement},
		{StatusRejected, StatusAccepted, AdjustDecrement},
		{StatusAccepted, StatusRejected, AdjustIncrement},
		{StatusAccepted, StatusReturned, AdjustIncrement},
		{StatusAccepted, StatusAccepted, AdjustNone},
		{StatusPending, StatusRejected, AdjustNone},
	}

	for _, tt := range tests {
		if got := AdjustmentFor(tt.from, tt.to); got != tt.want {
			t.Errorf("AdjustmentFor(%s, %s) = %s, want %s", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestClampAvailable(t *testing.T) {
	if got := ClampAvailable(-2, 5); got != 0 {
		t.Errorf("ClampAvailable(-2, 5) = %d", got)
	}
	if got := ClampAvailable(7, 5); got != 5 {
		t.Errorf("ClampAvailable(7, 5) = %d", got)
	}
	if got := ClampAvailable(3, 5); got != 3 {
		t.Errorf("ClampAvailable(3, 5) = %d", got)
	}
}
