package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_CheckTag(t *testing.T) {
	tests := []struct {
		name  string
		value string
		tag   string
		ok    bool
	}{
		{"email", "billing@acme.test", "required,email", true},
		{"email without domain", "billing@", "required,email", false},
		{"email without at", "billing.acme.test", "required,email", false},
		{"empty email", "", "required,email", false},
		{"url", "https://cpanel.acme.test:2083", "omitempty,url", true},
		{"url without scheme", "cpanel.acme.test", "omitempty,url", false},
		{"blank optional url", "", "omitempty,url", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Validator
			v.CheckTag(tt.value, tt.tag, "field", "invalid")
			if tt.ok {
				assert.NoError(t, v.Err())
				return
			}
			verr, ok := IsValidationError(v.Err())
			require.True(t, ok)
			assert.Equal(t, "invalid", verr.Fields["field"])
		})
	}
}
