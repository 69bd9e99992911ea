package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentTypeValidate(t *testing.T) {
	tests := []struct {
		name    string
		ct      ComponentType
		wantErr error
	}{
		{"valid", ComponentType{Name: "LED", MaxPerBox: 10}, nil},
		{"empty name", ComponentType{MaxPerBox: 1}, ErrInvalidName},
		{"zero capacity", ComponentType{Name: "Servo"}, ErrInvalidCapacity},
		{"negative capacity", ComponentType{Name: "Servo", MaxPerBox: -2}, ErrInvalidCapacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.ct.Validate(), tt.wantErr)
		})
	}
}

func TestBoxValidate(t *testing.T) {
	assert.NoError(t, (&Box{Name: "Kit A"}).Validate())
	assert.ErrorIs(t, (&Box{}).Validate(), ErrInvalidName)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "42", FormatID(id))

	for _, bad := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidID, "input %q", bad)
	}
}
