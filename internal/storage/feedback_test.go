package storage

import "testing"

func TestNormalizeDescription(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"too slow", "too slow"},
		{"  too slow  ", "too slow"},
		{"Too Slow", "too slow"},
		{"\tОчень Медленно \n", "очень медленно"},
		{"   ", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeDescription(tc.in); got != tc.want {
			t.Errorf("NormalizeDescription(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
