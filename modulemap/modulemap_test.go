package modulemap

import "testing"

func TestLookupKnownPackages(t *testing.T) {
	cases := map[string]string{
		"java/sql":                  "java.sql",
		"java/sql/rowset/spi":       "java.sql", // not under javax/sql/rowset
		"javax/swing/border":        "java.desktop",
		"javax/xml/ws/http":         "java.xml.ws",
		"com/sun/jdi/request":       "jdk.jdi",
		"javafx/scene/control/skin": "javafx.controls",
		"javafx/stage":              "javafx.graphics",
	}
	for pkg, want := range cases {
		got, ok := Lookup(pkg)
		if !ok {
			t.Errorf("Lookup(%q): ok = false, want true (module %s)", pkg, want)
			continue
		}
		if string(got) != want {
			t.Errorf("Lookup(%q) = %s, want %s", pkg, got, want)
		}
	}
}

func TestLookupUnmatched(t *testing.T) {
	cases := []string{
		"java/lang",
		"java/util",
		"com/example/app",
	}
	for _, pkg := range cases {
		if _, ok := Lookup(pkg); ok {
			t.Errorf("Lookup(%q): ok = true, want false", pkg)
		}
	}
}

func TestLookupExactPrefixMatch(t *testing.T) {
	if _, ok := Lookup("javafx/stageworks"); ok {
		t.Error(`Lookup("javafx/stageworks") matched "javafx/stage" as a substring prefix, want false`)
	}
}
