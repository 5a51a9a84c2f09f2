package ids

import (
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByScheme(t *testing.T) {
	tests := []struct {
		name   string
		scheme Scheme
	}{
		{"", SchemeUUID},
		{"uuid", SchemeUUID},
		{" UUID ", SchemeUUID},
		{"ksuid", SchemeKSUID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := ByScheme(tt.name)
			require.NoError(t, err)

			a, b := fn(), fn()
			assert.NotEqual(t, a, b)
			switch tt.scheme {
			case SchemeUUID:
				_, err = uuid.Parse(a)
			case SchemeKSUID:
				_, err = ksuid.Parse(a)
			}
			assert.NoError(t, err, "%q is not a %s", a, tt.scheme)
		})
	}
}

func TestByScheme_Unknown(t *testing.T) {
	fn, err := ByScheme("snowflake")
	assert.Error(t, err)
	assert.Nil(t, fn)
}
