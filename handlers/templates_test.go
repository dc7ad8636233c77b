package handlers

import (
	"testing"

	"github.com/matryer/is"
)

func TestHumanTime(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"unset renders dash", "", "-"},
		{"morning", "2026-08-24T09:05:07Z", "24 Aug 2026 • 09:05:07 AM"},
		{"afternoon", "2026-01-02T15:04:05Z", "02 Jan 2026 • 03:04:05 PM"},
		{"unparseable passes through", "yesterday-ish", "yesterday-ish"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(humanTime(tc.in), tc.want)
		})
	}
}
