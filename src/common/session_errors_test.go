package common

import (
	"fmt"
	"testing"
)

func TestIsSessionErr(t *testing.T) {
	err := NewSessionErr("relay", InvalidParams, "missing my_uid")

	if !IsSessionErr(err, InvalidParams) {
		t.Fatalf("expected InvalidParams")
	}

	if IsSessionErr(err, NoParams) {
		t.Fatalf("did not expect NoParams")
	}

	if IsSessionErr(fmt.Errorf("other"), InvalidParams) {
		t.Fatalf("plain error should not match")
	}

	if got, want := err.Error(), "relay, Invalid Params, missing my_uid"; got != want {
		t.Fatalf("Error() should be %q, not %q", want, got)
	}

	if got, want := NewSessionErr("session", NoParams, "").Error(), "session, No Params"; got != want {
		t.Fatalf("Error() should be %q, not %q", want, got)
	}
}
