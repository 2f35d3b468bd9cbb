package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OriginChecker reports whether a browser origin is on the allow-list.
type OriginChecker map[string]struct{}

func NewOriginChecker(origins []string) OriginChecker {
	oc := make(OriginChecker, len(origins))
	for _, o := range origins {
		oc[o] = struct{}{}
	}
	return oc
}

// Allowed accepts requests without an Origin header (non-browser clients).
func (oc OriginChecker) Allowed(origin string) bool {
	if origin == "" {
		return true
	}
	_, ok := oc[origin]
	return ok
}

// CheckOrigin has the signature of websocket.Upgrader.CheckOrigin.
func (oc OriginChecker) CheckOrigin(r *http.Request) bool {
	return oc.Allowed(r.Header.Get("Origin"))
}

func CORS(oc OriginChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && oc.Allowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
