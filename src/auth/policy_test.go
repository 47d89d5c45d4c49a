package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"all requirements met", "Password1!", true},
		{"longer passphrase", "correct-horse-battery-staple-99", true},
		{"too short", "Pass1!", false},
		{"contains a space", "Password 1!", false},
		{"no letters", "1234567890!?", false},
		{"no digits", "Password!!!", false},
		{"no special characters", "Password123", false},
		{"empty", "", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.valid, ValidatePassword(test.password))
		})
	}
}
