package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeNotFound, "schematic not found: %s", "castle.schem")
	want := "NOT_FOUND: schematic not found: castle.schem"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("corrupt NBT tag")
	err := Wrap(ErrCodeLoad, cause, "failed to parse %s", "castle.schem")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	want := "LOAD_FAILED: failed to parse castle.schem: corrupt NBT tag"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := New(ErrCodeRenderTimeout, "render exceeded 300s")

	if !Is(err, ErrCodeRenderTimeout) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeRenderProcess) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeRenderTimeout) {
		t.Error("Is should not match a plain error")
	}
}

func TestIsThroughWrapping(t *testing.T) {
	inner := New(ErrCodeOutputMissing, "snapshot never appeared")
	outer := fmt.Errorf("view 2: %w", inner)

	if !Is(outer, ErrCodeOutputMissing) {
		t.Error("Is should unwrap fmt.Errorf chains")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeStoreCreate, "mkdir failed")); got != ErrCodeStoreCreate {
		t.Errorf("GetCode = %s, want %s", got, ErrCodeStoreCreate)
	}
	if got := GetCode(stderrors.New("plain")); got != ErrCodeInternal {
		t.Errorf("GetCode for plain error = %s, want %s", got, ErrCodeInternal)
	}
}
