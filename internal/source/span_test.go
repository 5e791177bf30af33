package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want Span
	}{
		{"disjoint", Span{1, 2, 4}, Span{1, 8, 10}, Span{1, 2, 10}},
		{"nested", Span{1, 2, 10}, Span{1, 4, 5}, Span{1, 2, 10}},
		{"other file", Span{1, 2, 4}, Span{2, 0, 10}, Span{1, 2, 4}},
		{"zero value", Span{1, 0, 0}, Span{1, 3, 7}, Span{1, 3, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.want {
				t.Errorf("Cover = %v want %v", got, tt.want)
			}
		})
	}
}

func TestSpanOrdering(t *testing.T) {
	a := Span{File: 0, Start: 5, End: 6}
	b := Span{File: 0, Start: 5, End: 9}
	c := Span{File: 1, Start: 0, End: 1}
	if !a.Less(b) || !b.Less(c) || c.Less(a) {
		t.Errorf("unexpected ordering")
	}
	if !b.Contains(a) || a.Contains(b) {
		t.Errorf("unexpected containment")
	}
}
