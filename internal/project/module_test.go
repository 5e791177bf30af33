package project

import (
	"slices"
	"testing"
)

func TestAbsolutePath(t *testing.T) {
	cases := []struct {
		module []string
		segs   []string
		want   []string
		fail   bool
	}{
		{module: []string{"a", "b"}, segs: []string{"crate", "x", "Y"}, want: []string{"x", "Y"}},
		{module: []string{"a", "b"}, segs: []string{"x", "Y"}, want: []string{"x", "Y"}},
		{module: []string{"a", "b"}, segs: []string{"self", "Y"}, want: []string{"a", "b", "Y"}},
		{module: []string{"a", "b"}, segs: []string{"super", "Y"}, want: []string{"a", "Y"}},
		{module: []string{"a", "b"}, segs: []string{"super", "super", "Y"}, want: []string{"Y"}},
		{module: []string{"a"}, segs: []string{"super", "super", "Y"}, fail: true},
		{module: nil, segs: []string{"x", "crate"}, fail: true},
		{module: nil, segs: nil, fail: true},
	}
	for _, tc := range cases {
		got, err := AbsolutePath(tc.module, tc.segs)
		if tc.fail {
			if err == nil {
				t.Fatalf("AbsolutePath(%v, %v) = %v, want error", tc.module, tc.segs, got)
			}
			continue
		}
		if err != nil || !slices.Equal(got, tc.want) {
			t.Fatalf("AbsolutePath(%v, %v) = %v, %v; want %v", tc.module, tc.segs, got, err, tc.want)
		}
	}
}

func TestIsValidModuleIdent(t *testing.T) {
	for name, want := range map[string]bool{
		"token": true, "_inner": true, "v2": true, "": false, "2fast": false, "a-b": false,
	} {
		if got := IsValidModuleIdent(name); got != want {
			t.Fatalf("IsValidModuleIdent(%q) = %v, want %v", name, got, want)
		}
	}
}
