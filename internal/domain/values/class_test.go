package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Class_Validate(t *testing.T) {
	for _, c := range Classes() {
		t.Run(string(c), func(t *testing.T) {
			assert.NoError(t, c.Validate())
		})
	}

	assert.Error(t, Class("Skipped").Validate())
	assert.Error(t, Class("").Validate())
}

func Test_Class_IsPassing(t *testing.T) {
	assert.True(t, ClassSuccess.IsPassing())
	assert.True(t, ClassControlled.IsPassing())
	assert.False(t, ClassFailure.IsPassing())
	assert.False(t, ClassErrors.IsPassing())
}

func Test_Class_IsScored(t *testing.T) {
	assert.True(t, ClassSuccess.IsScored())
	assert.True(t, ClassFailure.IsScored())
	assert.True(t, ClassControlled.IsScored())
	assert.False(t, ClassErrors.IsScored())
}

func Test_ParseClass(t *testing.T) {
	c, err := ParseClass("Controlled")
	require.NoError(t, err)
	assert.Equal(t, ClassControlled, c)

	_, err = ParseClass("controlled")
	assert.Error(t, err)
}
