package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type config struct {
	name  string
	count int
}

func TestApply(t *testing.T) {
	c := &config{}
	err := Apply(c,
		NoError(func(c *config) { c.name = "set" }),
		New(func(c *config) error {
			c.count = 3
			return nil
		}),
	)
	require.NoError(t, err)
	require.Equal(t, "set", c.name)
	require.Equal(t, 3, c.count)
}

func TestApplyStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	c := &config{}
	err := Apply(c,
		New(func(*config) error { return boom }),
		NoError(func(c *config) { c.count = 9 }),
	)
	require.ErrorIs(t, err, boom)
	require.Zero(t, c.count, "later options must not run after a failure")
}
