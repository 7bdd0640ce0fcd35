package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(headers map[string]string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.RemoteAddr = "203.0.113.9:5555"
	for name, value := range headers {
		c.Request.Header.Set(name, value)
	}
	return c
}

func TestGetRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"remote address", nil, "203.0.113.9"},
		{"public x-real-ip", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"first public forwarded", map[string]string{"X-Forwarded-For": "10.100.1.1, 198.51.100.8, 198.51.100.9"}, "198.51.100.8"},
		{"only private forwarded", map[string]string{"X-Forwarded-For": "192.168.1.4, 10.0.0.1"}, "192.168.1.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetRealIP(newContext(tt.headers)))
		})
	}
}

func TestGetUserAgent(t *testing.T) {
	c := newContext(nil)
	c.Request.Header.Del("User-Agent")
	assert.Equal(t, "Unknown", GetUserAgent(c))

	c = newContext(map[string]string{"User-Agent": "curl/8.5.0"})
	assert.Equal(t, "curl/8.5.0", GetUserAgent(c))
}

func TestParseUserAgent(t *testing.T) {
	info := ParseUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
	assert.True(t, info.Mobile)
	assert.False(t, info.IsBot)
	assert.Contains(t, info.Browser, "Safari")

	bot := ParseUserAgent("Googlebot/2.1 (+http://www.google.com/bot.html)")
	assert.True(t, bot.IsBot)

	unknown := ParseUserAgent("")
	assert.Equal(t, "Unknown", unknown.Browser)
	assert.Equal(t, "Unknown", unknown.OS)
}

func TestGenerateJWTSecret(t *testing.T) {
	first, err := GenerateJWTSecret()
	require.NoError(t, err)
	second, err := GenerateJWTSecret()
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}
