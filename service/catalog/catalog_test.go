package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	testCases := []struct {
		name      string
		value     string
		expect    Kind
		expectErr bool
	}{
		{name: "cpu", value: "cpu", expect: KindCPU},
		{name: "memory with spaces and case", value: " Memoria ", expect: KindMemory},
		{name: "unknown", value: "disk", expectErr: true},
		{name: "empty", value: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := ParseKind(tc.value)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrUnknownKind)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expect, actual)
		})
	}
}
