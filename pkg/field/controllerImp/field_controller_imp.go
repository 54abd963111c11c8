package controllerImp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"canaswarm/entities"
	"canaswarm/pkg/field/service"
	"canaswarm/pkg/middleware"
	"canaswarm/pkg/report"
	"canaswarm/pkg/storage/repository"
)

const (
	ServiceName    = "CanaSwarm Intelligence"
	ServiceVersion = "1.0.0"

	maxFieldIDLen = 50
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type FieldCtrl struct {
	svc service.FieldService
	log *zap.Logger
}

func New(svc service.FieldService, log *zap.Logger) *FieldCtrl {
	if log == nil {
		log = zap.NewNop()
	}
	return &FieldCtrl{svc: svc, log: log.Named("api")}
}

func (h *FieldCtrl) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"service": ServiceName,
		"version": ServiceVersion,
		"status":  "operational",
		"endpoints": echo.Map{
			"health":          "GET /health",
			"fields":          "GET /api/v1/fields",
			"ingest":          "POST /api/v1/precision/ingest",
			"decision":        "GET /api/v1/decision?field_id=",
			"recompute":       "POST /api/v1/decision/recompute?field_id=",
			"history":         "GET /api/v1/decision/history?field_id=&limit=",
			"export":          "GET /api/v1/decision/export?field_id=",
			"recommendations": "GET /api/v1/recommendations?field_id=",
			"stats":           "GET /api/v1/stats",
		},
	})
}

func (h *FieldCtrl) Ingest(c echo.Context) error {
	var rec entities.FieldRecommendations
	if err := json.NewDecoder(c.Request().Body).Decode(&rec); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return middleware.JSONError(c, http.StatusBadRequest, "invalid JSON body")
		}
		return middleware.JSONError(c, http.StatusUnprocessableEntity, err.Error())
	}
	res, err := h.svc.Ingest(&rec)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *FieldCtrl) Decision(c echo.Context) error {
	id, err := fieldID(c)
	if err != nil {
		return middleware.JSONError(c, http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Decision(id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *FieldCtrl) Recompute(c echo.Context) error {
	id, err := fieldID(c)
	if err != nil {
		return middleware.JSONError(c, http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Recompute(id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *FieldCtrl) History(c echo.Context) error {
	id, err := fieldID(c)
	if err != nil {
		return middleware.JSONError(c, http.StatusBadRequest, err.Error())
	}
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 {
			return middleware.JSONError(c, http.StatusBadRequest, "limit must be a positive integer")
		}
	}
	hist, err := h.svc.History(id, limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"field_id": id, "history": hist, "total": len(hist)})
}

func (h *FieldCtrl) Export(c echo.Context) error {
	id, err := fieldID(c)
	if err != nil {
		return middleware.JSONError(c, http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Decision(id)
	if err != nil {
		return h.fail(c, err)
	}
	var buf bytes.Buffer
	if err := report.WriteDecisionWorkbook(&buf, d); err != nil {
		return h.fail(c, err)
	}
	name := fmt.Sprintf("decision_%s.xlsx", entities.NormalizeFieldID(d.FieldID))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

func (h *FieldCtrl) Recommendations(c echo.Context) error {
	id, err := fieldID(c)
	if err != nil {
		return middleware.JSONError(c, http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.Recommendations(id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *FieldCtrl) ListFields(c echo.Context) error {
	fields, err := h.svc.ListFields()
	if err != nil {
		return h.fail(c, err)
	}
	if fields == nil {
		fields = []entities.FieldListing{}
	}
	return c.JSON(http.StatusOK, echo.Map{"fields": fields, "total": len(fields)})
}

func (h *FieldCtrl) Stats(c echo.Context) error {
	st, err := h.svc.Stats()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *FieldCtrl) fail(c echo.Context, err error) error {
	var verr *entities.ValidationError
	switch {
	case errors.As(err, &verr):
		return middleware.JSONError(c, http.StatusUnprocessableEntity, verr.Error())
	case errors.Is(err, repository.ErrNotFound):
		return middleware.JSONError(c, http.StatusNotFound, err.Error())
	}
	h.log.Error("request failed", zap.Error(err), zap.String("path", c.Path()))
	return middleware.JSONError(c, http.StatusInternalServerError, "internal server error")
}

func fieldID(c echo.Context) (string, error) {
	id := c.QueryParam("field_id")
	if n := utf8.RuneCountInString(id); n < 1 || n > maxFieldIDLen {
		return "", fmt.Errorf("field_id must be between 1 and %d characters", maxFieldIDLen)
	}
	return id, nil
}

