package posterapi

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up the collaborator endpoints. Paths match what the
// web front end is configured with (USER_API_URL, POSTER_API_BASE).
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/healthz", h.Healthz)

	e.GET("/user", h.GetUser)
	e.POST("/user", h.CreateUser)
	e.PUT("/user", h.UpdateUser)
	e.DELETE("/user", h.DeleteUser)

	e.GET("/history", h.History)
	e.POST("/pay", h.Pay)

	e.GET("/movie-poster-api-design", h.Generate)
	e.POST("/movie-poster-api-design", h.Generate)
}
