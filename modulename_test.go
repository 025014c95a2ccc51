package modcut

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestModuleNameIsPlatform(t *testing.T) {
	tt := []struct {
		name ModuleName
		want bool
	}{
		{"java.base", true},
		{"java.sql", true},
		{"jdk.crypto.ec", true},
		{"javafx.base", true},
		{"oracle.net", true},
		{"com.example.app", false},
		{"", false},
	}
	for _, tc := range tt {
		t.Run(string(tc.name), func(t *testing.T) {
			if got := tc.name.IsPlatform(); got != tc.want {
				t.Errorf("IsPlatform() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestModuleSetUnionSubtract(t *testing.T) {
	a := NewModuleSet("java.base", "java.sql")
	b := NewModuleSet("java.sql", "java.xml")

	union := a.Union(b)
	want := []ModuleName{"java.base", "java.sql", "java.xml"}
	if diff := cmp.Diff(want, union.Sorted()); diff != "" {
		t.Errorf("Union() mismatch (-want +got):\n%s", diff)
	}

	diff := a.Subtract(b)
	wantDiff := []ModuleName{"java.base"}
	if d := cmp.Diff(wantDiff, diff.Sorted()); d != "" {
		t.Errorf("Subtract() mismatch (-want +got):\n%s", d)
	}
}

func TestModuleSetSortedDeterministic(t *testing.T) {
	s := NewModuleSet("jdk.zipfs", "java.base", "java.sql", "java.logging")
	got := s.Sorted()
	want := []ModuleName{"java.base", "java.logging", "java.sql", "jdk.zipfs"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sorted() mismatch (-want +got):\n%s", diff)
	}
}
