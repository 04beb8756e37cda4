package transport

import (
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/gin-gonic/gin"
)

// Guards bundles what controllers need to protect their route groups.
type Guards struct {
	Issuer       *TokenIssuer
	Limiter      *RateLimiter
	Auth         RateClass
	Modification RateClass
}

// Protected creates a group that requires a token carrying the capability.
// Writes inside it count against the modification class.
func (g Guards) Protected(parent *gin.RouterGroup, path string, capability access.Capability) *gin.RouterGroup {
	return parent.Group(path,
		AuthMiddleware(g.Issuer),
		RequireCapability(capability),
		g.Limiter.LimitWrites(g.Modification),
	)
}

func (g Guards) AuthLimit() gin.HandlerFunc {
	return g.Limiter.Limit(g.Auth)
}
