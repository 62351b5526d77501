package polymult

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionsValidateDefaults(t *testing.T) {
	require.NoError(t, (Options{}).Validate(3, 3), "zero-value Options should validate")
}

func TestOptionsValidateCircularRequiresSize(t *testing.T) {
	err := (Options{Circular: Circular}).Validate(4, 4)
	if err == nil {
		t.Fatal("expected error for Circular mode without CircularSize")
	}
}

func TestOptionsValidateCircularRejectsTail(t *testing.T) {
	err := Options{Circular: Circular, CircularSize: 4, Tail: TailHigh, Lo: 0, Hi: 1}.Validate(4, 4)
	if err == nil {
		t.Fatal("expected error combining Circular with a restricted tail")
	}
}

func TestOptionsValidateRejectsBadSizes(t *testing.T) {
	if err := (Options{}).Validate(0, 3); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestOptionsValidateTailMiddleRange(t *testing.T) {
	if err := (Options{Tail: TailMiddle, Lo: 3, Hi: 1}).Validate(4, 4); err == nil {
		t.Fatal("expected error for Hi < Lo")
	}
}
