package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEventCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"482913", true},
		{"000000", true},
		{"48291", false},
		{"4829130", false},
		{"48a913", false},
		{"ABCDEF", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidEventCode(tt.code))
		})
	}
}
