package position

import (
	"reflect"
	"testing"
)

func TestAssign(t *testing.T) {
	tests := []struct {
		n    int
		want []Label
	}{
		{0, []Label{}},
		{1, []Label{First}},
		{2, []Label{First, Last}},
		{3, []Label{First, Second, Last}},
		{4, []Label{First, Second, Penultimate, Last}},
		{5, []Label{First, Second, Middle, Penultimate, Last}},
		{7, []Label{First, Second, Middle, Middle, Middle, Penultimate, Last}},
	}

	for _, tt := range tests {
		got := Assign(tt.n)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Assign(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestAssign_Negative(t *testing.T) {
	if got := Assign(-3); len(got) != 0 {
		t.Errorf("Assign(-3) = %v, want empty", got)
	}
}
