package server

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Sup3r$ecret", true},
		{"short1$A", true},
		{"Sh0rt$", false},              // too short
		{"alllowercase1$", false},      // no uppercase
		{"ALLUPPERCASE1$", false},      // no lowercase
		{"NoDigitsHere$", false},       // no digit
		{"NoSpecials123Abc", false},    // no special
		{"", false},
	}
	for _, tt := range tests {
		err := validatePassword(tt.password)
		if tt.valid {
			assert.NoError(t, err, "password %q", tt.password)
		} else {
			assert.Error(t, err, "password %q", tt.password)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, validateUsername("ada_lovelace"))
	assert.NoError(t, validateUsername("ada.l-2"))
	assert.Error(t, validateUsername("ab"))
	assert.Error(t, validateUsername("has space"))
	assert.Error(t, validateUsername("emoji😀name"))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, validateEmail("ada@example.com"))
	assert.False(t, validateEmail(""))
	assert.False(t, validateEmail("not-an-email"))
}

func TestClientIPIgnoresHeadersFromUntrustedPeer(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "198.51.100.7:4711"
	r.Header.Set("X-Forwarded-For", "203.0.113.9")

	assert.Equal(t, "198.51.100.7", clientIP(r, nil))
}

func TestClientIPTrustsConfiguredProxy(t *testing.T) {
	trusted := parseProxyCIDRs([]string{"10.0.0.0/8"})

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:4711"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.1.2.3")
	assert.Equal(t, "203.0.113.9", clientIP(r, trusted))

	r = httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:4711"
	r.Header.Set("X-Real-IP", "203.0.113.10")
	assert.Equal(t, "203.0.113.10", clientIP(r, trusted))
}

func TestParseProxyCIDRsAcceptsBareIPs(t *testing.T) {
	nets := parseProxyCIDRs([]string{"192.0.2.1", "10.0.0.0/8", "", "garbage"})
	assert.Len(t, nets, 2)
	assert.True(t, isTrustedProxy("192.0.2.1", nets))
	assert.True(t, isTrustedProxy("10.20.30.40", nets))
	assert.False(t, isTrustedProxy("203.0.113.9", nets))
}
