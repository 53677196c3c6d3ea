package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Block{
		{Magnitude: 1, Visibility: Explicit},
		{Magnitude: 1, Visibility: Implicit},
		{Magnitude: 42, Visibility: Explicit},
		{Magnitude: 42, Visibility: Implicit},
	}
	for _, b := range cases {
		assert.Equal(t, b, DecodeBlock(b.Encode()))
	}
}

func TestBlockEncodeSign(t *testing.T) {
	assert.EqualValues(t, 3, Block{Magnitude: 3, Visibility: Explicit}.Encode())
	assert.EqualValues(t, -3, Block{Magnitude: 3, Visibility: Implicit}.Encode())
}

func TestVisibilityOfDelay(t *testing.T) {
	assert.Equal(t, Explicit, visibilityOfDelay(5))
	assert.Equal(t, Implicit, visibilityOfDelay(-5))
}
