package middleware

import "github.com/gin-gonic/gin"

// apiHeaders suit a JSON/PNG API: nothing here is meant to be framed,
// scripted or embedded by another origin.
var apiHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "no-referrer"},
	{"Cross-Origin-Resource-Policy", "same-site"},
	{"Permissions-Policy", "camera=(), geolocation=(), microphone=()"},
}

// SecurityHeaders sets the API response headers. HSTS is only sent when the
// service is reached over HTTPS.
func SecurityHeaders(isHTTPS bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range apiHeaders {
			c.Header(h[0], h[1])
		}
		if isHTTPS {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
