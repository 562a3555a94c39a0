package ignore

import "testing"

func TestIgnoresFullAndComponentMatch(t *testing.T) {
	l := Empty()

	if l.Ignores("foo") {
		t.Errorf("empty list should not ignore anything")
	}

	l.Insert("foo")

	cases := []struct {
		path string
		want bool
	}{
		{"foo", true},
		{"./foo", true},
		{"./subdir/foo", true},
		{"./subdir/sfoo", false},
		{"./subdir/foos", false},
		{"./subdir/foo/child", true},
		{"bar", false},
	}
	for _, c := range cases {
		if got := l.Ignores(c.path); got != c.want {
			t.Errorf("Ignores(%q) = %v, want %v", c.path, got, c.want)
		}
	}

	l.Insert("./fully/specified/path")
	if !l.Ignores("./fully/specified/path") {
		t.Errorf("expected full path match")
	}
}

func TestDefaultIgnoresHiddenNames(t *testing.T) {
	l := Default()
	for _, p := range []string{".prototype", ".prototype_cache", "./.prototype", "./.prototype_cache"} {
		if !l.Ignores(p) {
			t.Errorf("Ignores(%q) = false, want true", p)
		}
	}
}
