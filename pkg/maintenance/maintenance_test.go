package maintenance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	t.Run("matching key grants", func(t *testing.T) {
		auth, err := Authorize("s3cret", "s3cret")
		require.NoError(t, err)
		assert.True(t, auth.Granted())
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		auth, err := Authorize("s3cret", "guess")
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.Nil(t, auth)
	})

	t.Run("empty configured key disables the surface", func(t *testing.T) {
		auth, err := Authorize("", "")
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.Nil(t, auth)
	})

	t.Run("empty presented key is rejected", func(t *testing.T) {
		auth, err := Authorize("s3cret", "")
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.Nil(t, auth)
	})
}

func TestGrantedOnZeroValues(t *testing.T) {
	var nilAuth *Authorization
	assert.False(t, nilAuth.Granted())
	assert.False(t, (&Authorization{}).Granted())
}
