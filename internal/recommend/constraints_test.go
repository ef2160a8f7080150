package recommend

import (
	"errors"
	"testing"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestConstraintsValidate(t *testing.T) {
	cases := []struct {
		name        string
		constraints Constraints
		wantErr     bool
	}{
		{name: "empty", constraints: Constraints{}},
		{name: "full", constraints: Constraints{TopK: 7, MaxDurationMinutes: intPtr(45), CategoryRatio: floatPtr(0.5)}},
		{name: "negative duration", constraints: Constraints{MaxDurationMinutes: intPtr(-1)}, wantErr: true},
		{name: "ratio above one", constraints: Constraints{CategoryRatio: floatPtr(1.5)}, wantErr: true},
		{name: "ratio below zero", constraints: Constraints{CategoryRatio: floatPtr(-0.1)}, wantErr: true},
		{name: "negative top k", constraints: Constraints{TopK: -3}, wantErr: true},
		{name: "ratio bounds are inclusive", constraints: Constraints{CategoryRatio: floatPtr(1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.constraints.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidConstraints) {
					t.Fatalf("expected ErrInvalidConstraints, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEffectiveTopK(t *testing.T) {
	cases := []struct {
		name        string
		constraints Constraints
		want        int
	}{
		{name: "default", constraints: Constraints{}, want: DefaultTopK},
		{name: "within range", constraints: Constraints{TopK: 7}, want: 7},
		{name: "clamped up", constraints: Constraints{TopK: 2}, want: MinTopK},
		{name: "clamped down", constraints: Constraints{TopK: 25}, want: MaxTopK},
		{name: "raw below min", constraints: Constraints{TopK: 3, RawTopK: true}, want: 3},
		{name: "raw above max", constraints: Constraints{TopK: 100, RawTopK: true}, want: 100},
		{name: "raw default", constraints: Constraints{RawTopK: true}, want: DefaultTopK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.constraints.EffectiveTopK(); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
