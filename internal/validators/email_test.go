package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@x.com", NormalizeEmail("  Jane@X.com "))
}

func TestIsEmailSyntaxValid(t *testing.T) {
	assert.True(t, IsEmailSyntaxValid("jane@x.com"))
	assert.False(t, IsEmailSyntaxValid("jane"))
	assert.False(t, IsEmailSyntaxValid("jane@"))
	assert.False(t, IsEmailSyntaxValid("Jane <jane@x.com>"))
}

func TestIsEmailDomainValidRejectsMissingDomain(t *testing.T) {
	assert.False(t, IsEmailDomainValid("jane@"))
	assert.False(t, IsEmailDomainValid("jane"))
}
