package router

import (
	"github.com/labstack/echo/v4"

	"canaswarm/pkg/field/controller"
)

func New(
	e *echo.Echo,
	fieldCtrl controller.FieldController,
	healthCtrl interface{ Health(echo.Context) error },
) *echo.Echo {
	e.GET("/", fieldCtrl.Root)
	e.GET("/health", healthCtrl.Health)

	api := e.Group("/api/v1")
	api.GET("/fields", fieldCtrl.ListFields)
	api.GET("/stats", fieldCtrl.Stats)
	api.GET("/recommendations", fieldCtrl.Recommendations)
	api.POST("/precision/ingest", fieldCtrl.Ingest)

	api.GET("/decision", fieldCtrl.Decision)
	api.POST("/decision/recompute", fieldCtrl.Recompute)
	api.GET("/decision/history", fieldCtrl.History)
	api.GET("/decision/export", fieldCtrl.Export)
	return e
}
