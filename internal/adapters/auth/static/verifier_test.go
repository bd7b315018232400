package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	v := NewVerifier("mariateresa", "s3cret")

	c, err := v.Verify(context.Background(), " s3cret ")
	require.NoError(t, err)
	assert.Equal(t, "mariateresa", c.UserID)

	_, err = v.Verify(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}

func TestVerify_NotConfigured(t *testing.T) {
	_, err := NewVerifier("mariateresa", "").Verify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
