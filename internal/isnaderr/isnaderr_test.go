package isnaderr

import (
	"errors"
	"testing"
)

func TestIs(t *testing.T) {
	err := Invalid("bad task id %q", "!!!")
	if !Is(err, KindInvalidInput) {
		t.Errorf("expected KindInvalidInput")
	}
	if Is(err, KindNotFound) {
		t.Errorf("expected not KindNotFound")
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := IO("write board.json", cause)
	if !errors.Is(err, cause) {
		t.Errorf("expected Unwrap to expose cause")
	}
	if !Is(err, KindIoError) {
		t.Errorf("expected KindIoError")
	}
}
