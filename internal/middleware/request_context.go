package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"pescasolic/pkg/reqctx"
)

// RequestContext stamps the request id (from fiber's requestid middleware)
// and the authenticated user id (from JWT, when it ran first) onto the
// request's context.Context, so downstream C5/C6/C7 stage calls can reach
// them via pkg/reqctx without threading *fiber.Ctx past the HTTP edge.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if id := c.Locals(requestid.ConfigDefault.ContextKey); id != nil {
			if s, ok := id.(string); ok {
				ctx = reqctx.WithRequestID(ctx, s)
			}
		}
		if user := GetUserFromContext(c); user != nil {
			ctx = reqctx.WithUserID(ctx, user.UserID)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}
