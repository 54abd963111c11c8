package controller

import "github.com/labstack/echo/v4"

type FieldController interface {
	Root(c echo.Context) error
	Ingest(c echo.Context) error
	Decision(c echo.Context) error
	Recompute(c echo.Context) error
	History(c echo.Context) error
	Export(c echo.Context) error
	Recommendations(c echo.Context) error
	ListFields(c echo.Context) error
	Stats(c echo.Context) error
}
