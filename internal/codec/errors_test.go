package codec

import (
	"errors"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(PlatformFailure, "vda.Decode", cause)

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
	if err.Kind != PlatformFailure {
		t.Errorf("Kind = %v, want PlatformFailure", err.Kind)
	}
}

func TestErrorStringWithAndWithoutCause(t *testing.T) {
	withCause := NewError(InvalidArgument, "config.Validate", errors.New("bad profile"))
	if got := withCause.Error(); got != "config.Validate: invalid_argument: bad profile" {
		t.Errorf("Error() = %q", got)
	}

	withoutCause := NewError(IllegalState, "component.Start", nil)
	if got := withoutCause.Error(); got != "component.Start: illegal_state" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorKindIsFatal(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want bool
	}{
		{Success, false},
		{IllegalState, false},
		{InvalidArgument, true},
		{UnreadableInput, true},
		{PlatformFailure, true},
		{InsufficientResources, false},
	}
	for _, tt := range tests {
		if got := tt.kind.IsFatal(); got != tt.want {
			t.Errorf("%v.IsFatal() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
