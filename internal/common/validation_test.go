package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInUnitInterval(t *testing.T) {
	tests := []struct {
		name     string
		p        float64
		expected bool
	}{
		{"zero", 0, true},
		{"one", 1, true},
		{"typical epsilon", 0.5, true},
		{"negative", -0.01, false},
		{"above one", 1.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InUnitInterval(tt.p))
		})
	}
}
