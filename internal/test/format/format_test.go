package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Delyplott/DelyPlot-Web/internal/format"
)

func TestBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{-5, "0 B"},
		{1, "1 B"},
		{1023, "1023 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{10 * 1024 * 1024, "10 MB"},
		{1288490189, "1.2 GB"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, format.Bytes(tc.in), "Bytes(%d)", tc.in)
	}
}

func TestCLP(t *testing.T) {
	assert.Equal(t, "$0", format.CLP(0))
	assert.Equal(t, "$950", format.CLP(950))
	assert.Equal(t, "$5.000", format.CLP(5000))
	assert.Equal(t, "$1.234.567", format.CLP(1234567))
	assert.Equal(t, "-$12.000", format.CLP(-12000))
}
