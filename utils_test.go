package apillon_test

import (
	"testing"
	"unicode/utf8"

	"github.com/apillon/apillon-go"
)

func TestIsValidVirtualPath(t *testing.T) {
	invalidUTF8 := string([]byte{'a', 0xff, 'b'})

	tt := []struct {
		Name string
		Path string
		Want bool
	}{
		{Name: "empty path is the root", Path: "", Want: true},
		{Name: "leading slash", Path: "/some/path", Want: false},
		{Name: "trailing slash", Path: "some/path/", Want: false},

		{Name: "double dots segment", Path: "../a", Want: false},
		{Name: "double dots in middle", Path: "a/../b", Want: false},
		{Name: "single dot segment", Path: "a/./b", Want: false},
		{Name: "single dot only", Path: ".", Want: false},

		{Name: "double slash", Path: "a//b", Want: false},
		{Name: "backslash", Path: `some\path`, Want: false},

		{Name: "contains tab", Path: "some\tpath", Want: false},
		{Name: "contains newline", Path: "some\npath", Want: false},
		{Name: "contains NUL", Path: "some\x00path", Want: false},
		{Name: "contains DEL", Path: "some\x7fpath", Want: false},
		{Name: "invalid utf8", Path: invalidUTF8, Want: false},

		{Name: "simple valid", Path: "images/icons", Want: true},
		{Name: "dots inside a name", Path: "v1..2/a.b", Want: true},
		{Name: "hidden directory", Path: ".well-known", Want: true},
		{Name: "space allowed", Path: "my docs/2024", Want: true},
		{Name: "unicode valid", Path: "привет/世界", Want: true},
	}

	if utf8.ValidString(invalidUTF8) {
		t.Fatalf("test setup error: invalidUTF8 is unexpectedly valid")
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			got := apillon.IsValidVirtualPath(tc.Path)
			if got != tc.Want {
				expected := "valid"
				if !tc.Want {
					expected = "invalid"
				}
				t.Errorf("expected path %q to be %s, got %v", tc.Path, expected, got)
			}
		})
	}
}

func TestJoinVirtualPath(t *testing.T) {
	tt := []struct {
		Dir, Name, Want string
	}{
		{Dir: "", Name: "a.txt", Want: "a.txt"},
		{Dir: "docs", Name: "a.txt", Want: "docs/a.txt"},
		{Dir: "docs/sub/", Name: "a.txt", Want: "docs/sub/a.txt"},
		{Dir: "/", Name: "a.txt", Want: "a.txt"},
	}

	for _, tc := range tt {
		if got := apillon.JoinVirtualPath(tc.Dir, tc.Name); got != tc.Want {
			t.Errorf("JoinVirtualPath(%q, %q) = %q, want %q", tc.Dir, tc.Name, got, tc.Want)
		}
	}
}
