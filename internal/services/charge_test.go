package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCharge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Charge
	}{
		{"1/2/J", Charge{Total: 2, Done: 1}},
		{" 0,5/1,5/J ", Charge{Total: 1.5, Done: 0.5}},
		{"2", Charge{Total: 2}},
		{"0,5", Charge{Total: 0.5}},
		{"1.5", Charge{Total: 1.5}},
		{"2 J", Charge{Total: 2}},
		{"2 J/H", Charge{Total: 2}},
		{"2/J", Charge{Total: 2}},
		{"0,5 / J", Charge{Total: 0.5}},
		{"-1/2/J", Charge{Total: 2, Done: 0}},
		{"0/3/J", Charge{Total: 3, Done: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCharge(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCharge_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "abc", "1/x/J", "x/2/J", "-2", "1/2", "J 2", "1/2/3/J", "2/"} {
		t.Run(in, func(t *testing.T) {
			t.Parallel()

			_, err := ParseCharge(in)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidCharge)

			var ce *ChargeError
			require.True(t, errors.As(err, &ce))
		})
	}
}

func TestChargeError_Message(t *testing.T) {
	t.Parallel()

	_, err := ParseCharge("1/x/J")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"x"`)
	assert.Contains(t, err.Error(), `"1/x/J"`)
}
