package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/crewhq/meetup-backend/internal/handler"    // import the handlers that implement business logic
	"github.com/crewhq/meetup-backend/internal/middleware" // import middleware for JWT authentication, rate limiting and caching
)

// Handlers bundles every handler the router needs. main builds one of
// these after wiring repositories and services.
type Handlers struct {
	Auth          *handler.AuthHandler
	Meetups       *handler.MeetupHandler
	Rooms         *handler.RoomHandler
	Evaluations   *handler.EvaluationHandler
	Notifications *handler.NotificationHandler
}

// Middlewares carries the optional cross-cutting middleware. Any nil
// entry is simply skipped, which is how the server degrades when Redis
// is unavailable.
type Middlewares struct {
	RateLimit echo.MiddlewareFunc // token bucket, applied to join, completion and evaluation submission
	Cache     echo.MiddlewareFunc // response cache, applied to public listings
}

// RegisterRoutes registers non-authenticated routes on the provided Echo
// instance: the health check, the Prometheus scrape endpoint and the
// public browse surface.
func RegisterRoutes(e *echo.Echo, h Handlers, mw Middlewares) {
	// Map the GET request at path "/healthz" to the Health handler. This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", middleware.MetricsHandler())

	// Public browse endpoints. Listings are cacheable because they only
	// change when meetups are created or deleted.
	if mw.Cache != nil {
		e.GET("/v1/meetups", h.Meetups.List, mw.Cache)
	} else {
		e.GET("/v1/meetups", h.Meetups.List)
	}
	e.GET("/v1/meetups/:id", h.Meetups.Get)
	e.GET("/v1/members/:id", h.Auth.Profile)
}

// RegisterAuth registers authentication routes and every endpoint that
// requires a valid access token. Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, h Handlers, mw Middlewares, jwtSecret string) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login). Each of these
	// handlers is responsible for generating tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle member registration at /v1/auth/register.
	g.POST("/register", h.Auth.Register)
	// Register a POST endpoint to handle member login at /v1/auth/login.
	g.POST("/login", h.Auth.Login)

	// Create another group for routes that require a valid access token. All
	// handlers registered on this group will execute the JWTAuth middleware
	// before being invoked. Protected endpoints live under /v1.
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))

	// Register a GET endpoint at /v1/me that returns the authenticated member's information.
	auth.GET("/me", h.Auth.Me)

	// Meetup lifecycle. Completion shares the rate limit with joins:
	// it is idempotent, but retry storms still burn transactions.
	auth.POST("/meetups", h.Meetups.Create)
	auth.GET("/meetups/:id/participants", h.Meetups.Participants)
	if mw.RateLimit != nil {
		auth.POST("/meetups/:id/complete", h.Meetups.Complete, mw.RateLimit)
	} else {
		auth.POST("/meetups/:id/complete", h.Meetups.Complete)
	}
	auth.DELETE("/meetups/:id", h.Meetups.Delete)

	// Room admission. Joins are rate limited because they are the endpoint
	// a client is most likely to hammer when a popular meetup is filling up.
	if mw.RateLimit != nil {
		auth.POST("/rooms/:id/join", h.Rooms.Join, mw.RateLimit)
	} else {
		auth.POST("/rooms/:id/join", h.Rooms.Join)
	}
	auth.GET("/rooms/:id", h.Rooms.Get)
	auth.GET("/rooms/:id/members", h.Rooms.Members)
	auth.POST("/rooms/:id/leave", h.Rooms.Leave)
	auth.PATCH("/rooms/:id/capacity", h.Rooms.UpdateCapacity)
	auth.POST("/rooms/direct", h.Rooms.CreateDirect)
	auth.DELETE("/rooms/:id", h.Rooms.Delete)

	// Evaluations.
	if mw.RateLimit != nil {
		auth.POST("/meetups/:id/evaluations", h.Evaluations.Submit, mw.RateLimit)
	} else {
		auth.POST("/meetups/:id/evaluations", h.Evaluations.Submit)
	}
	auth.GET("/me/evaluations", h.Evaluations.ListReceived)

	// Notification inbox.
	auth.GET("/notifications", h.Notifications.List)
	auth.POST("/notifications/:id/read", h.Notifications.MarkRead)
	auth.GET("/notifications/unread-count", h.Notifications.UnreadCount)
}
