package search

import (
	"errors"
	"reflect"
	"testing"
)

func TestPackUnpackVector(t *testing.T) {
	tests := []struct {
		name string
		vec  Vector
		dim  int
	}{
		{"Sparse", Vector{{Index: 2, Weight: 0.5}, {Index: 70000, Weight: 0.25}}, 70001},
		{"Zero vector", nil, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := PackVector(tt.vec, tt.dim)
			got, dim, err := UnpackVector(packed)
			if err != nil {
				t.Fatalf("UnpackVector failed: %v", err)
			}
			if dim != tt.dim {
				t.Errorf("dim = %d, want %d", dim, tt.dim)
			}
			if !reflect.DeepEqual(got, tt.vec) {
				t.Errorf("UnpackVector = %v, want %v", got, tt.vec)
			}
		})
	}
}

func TestUnpackVectorRejectsCorruptInput(t *testing.T) {
	good := PackVector(Vector{{Index: 1, Weight: 1}}, 4)

	cases := map[string][]byte{
		"too short":       good[:3],
		"truncated entry": good[:len(good)-1],
		"index past dim":  PackVector(Vector{{Index: 9, Weight: 1}}, 4),
		"unsorted":        PackVector(Vector{{Index: 2, Weight: 1}, {Index: 1, Weight: 1}}, 4),
	}

	for name, b := range cases {
		if _, _, err := UnpackVector(b); !errors.Is(err, ErrCorruptVector) {
			t.Errorf("%s: expected ErrCorruptVector, got %v", name, err)
		}
	}
}
