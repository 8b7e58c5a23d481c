package auth

import (
	"fmt"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateConstraintError(t *testing.T) {
	record := &Account{Username: "jdoe", Email: "jdoe@example.com"}

	t.Run("typed duplicate key attributes the column from metadata", func(t *testing.T) {
		// repository wrappers render a generic message and keep the
		// violated constraint in metadata
		wrapped := errors.New("An unexpected error occurred.", errors.CategoryConflict).
			WithTextCode("DUPLICATE_KEY").
			WithMetadata(map[string]any{"constraint": "accounts_email_key"})

		err := translateConstraintError(wrapped, record)
		require.Error(t, err)
		assert.True(t, IsEmailExists(err))
	})

	t.Run("typed duplicate key without a column defaults to username", func(t *testing.T) {
		wrapped := errors.New("An unexpected error occurred.", errors.CategoryConflict).
			WithTextCode("DUPLICATE_KEY")

		err := translateConstraintError(wrapped, record)
		require.Error(t, err)
		assert.True(t, IsUsernameExists(err))
	})

	t.Run("raw sqlite violation", func(t *testing.T) {
		err := translateConstraintError(
			fmt.Errorf("UNIQUE constraint failed: accounts.username"), record)
		require.Error(t, err)
		assert.True(t, IsUsernameExists(err))
	})

	t.Run("raw postgres violation", func(t *testing.T) {
		err := translateConstraintError(
			fmt.Errorf(`duplicate key value violates unique constraint "accounts_email_key"`), record)
		require.Error(t, err)
		assert.True(t, IsEmailExists(err))
	})

	t.Run("unrelated errors pass through", func(t *testing.T) {
		cause := fmt.Errorf("disk I/O error")
		assert.Equal(t, cause, translateConstraintError(cause, record))
		assert.NoError(t, translateConstraintError(nil, record))
	})
}
