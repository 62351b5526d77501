package polymult

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestBuildPlanDeterministic checks that resolving the same inputs twice
// yields field-for-field identical Plans, using go-cmp rather than
// reflect.DeepEqual for a readable diff on failure.
func TestBuildPlanDeterministic(t *testing.T) {
	opts := Options{Tail: TailHigh, Lo: 2, Hi: 6}
	p1, err := BuildPlan(50, 60, opts)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := BuildPlan(50, 60, opts)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(p1, p2); diff != "" {
		t.Fatalf("BuildPlan is not deterministic for identical inputs:\n%s", diff)
	}
}
