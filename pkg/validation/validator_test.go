package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Address string `json:"wallet_address" validate:"wallet"`
	Name    string `json:"display_name" validate:"displayname"`
	Body    string `json:"content" validate:"postbody"`
	Email   string `json:"email" validate:"omitempty,email"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := Struct(sample{
			Address: "7FM2ia6Q4E2RQpDEtafeuVLc8BTK1FRRUzSQpHpU7VDb",
			Name:    "Vortex",
			Body:    "hello",
		})
		assert.NoError(t, err)
	})

	t.Run("field messages use json names", func(t *testing.T) {
		err := Struct(sample{
			Address: "not-a-wallet",
			Name:    "   ",
			Body:    strings.Repeat("é", 501),
			Email:   "nope",
		})
		require.Error(t, err)
		details := ToDetails(err)
		assert.Equal(t, "must be a base58 wallet address", details["wallet_address"])
		assert.Equal(t, "is required", details["display_name"])
		assert.Equal(t, "must be at most 500 characters long", details["content"])
		assert.Equal(t, "must be a valid email", details["email"])
	})

	t.Run("runes counts characters", func(t *testing.T) {
		err := Struct(sample{
			Address: "7FM2ia6Q4E2RQpDEtafeuVLc8BTK1FRRUzSQpHpU7VDb",
			Name:    "Vortex",
			Body:    strings.Repeat("é", 500),
		})
		assert.NoError(t, err)
	})
}

func TestToDetails_Fallbacks(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(assert.AnError))
}
