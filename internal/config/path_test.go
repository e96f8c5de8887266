package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("SIFT_DATA", "/srv/sift")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: "/home/tester"},
		{in: "~/sift.db", want: "/home/tester/sift.db"},
		{in: "~/data/../sift.db", want: "/home/tester/sift.db"},
		{in: "$SIFT_DATA/sift.db", want: "/srv/sift/sift.db"},
		{in: "/abs/path.db", want: "/abs/path.db"},
		{in: "~user/x", want: "~user/x"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}
