package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanize(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "now"},
		{30 * time.Second, "in a minute"},
		{90 * time.Second, "in 2 minutes"},
		{59 * time.Minute, "in 59 minutes"},
		{60 * time.Minute, "in an hour"},
		{90 * time.Minute, "in 2 hours"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Humanize(c.d), "Humanize(%s)", c.d)
	}
}

func TestDescribeExplicit(t *testing.T) {
	assert.Equal(t, "later", DescribeExplicit(5*time.Minute, Implicit))
	assert.Equal(t, "in 5 minutes", DescribeExplicit(5*time.Minute, Explicit))
}
