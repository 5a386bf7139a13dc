package http

import (
	"errors"
	"net/http"
	"trading-dashboard/internal/dto"
	"trading-dashboard/internal/optimize"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupOptimize(base *echo.Group) {
	optimizeGroup := base.Group("/optimize")
	optimizeGroup.GET("", h.getOptimizeView)
	optimizeGroup.GET("/history", h.getTrialHistory)
	optimizeGroup.POST("/suggestions/refresh", h.refreshSuggestions)
	optimizeGroup.POST("/toggle", h.toggleSuggestion)
	optimizeGroup.POST("/toggle-all", h.toggleAllSuggestions)
	optimizeGroup.POST("/dismiss", h.dismissSuggestion)
	optimizeGroup.POST("/trial", h.runTrial)
	optimizeGroup.POST("/reset", h.resetTrial)
	optimizeGroup.POST("/apply", h.applySuggestions)
}

func (h *HttpAPIHandler) getOptimizeView(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.service.OptimizeService.View(ctx)
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse("failed to load suggestions"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("success", view))
}

func (h *HttpAPIHandler) refreshSuggestions(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.service.OptimizeService.Refresh(ctx); err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse("failed to reload suggestions"))
	}

	view, err := h.service.OptimizeService.View(ctx)
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse("failed to load suggestions"))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("suggestions reloaded", view))
}

func (h *HttpAPIHandler) toggleSuggestion(c echo.Context) error {
	req := new(dto.ToggleRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	h.service.OptimizeService.Toggle(req.SettingName)

	view, err := h.service.OptimizeService.View(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse("failed to load suggestions"))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("success", view))
}

func (h *HttpAPIHandler) toggleAllSuggestions(c echo.Context) error {
	h.service.OptimizeService.ToggleAll()

	view, err := h.service.OptimizeService.View(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse("failed to load suggestions"))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("success", view))
}

func (h *HttpAPIHandler) dismissSuggestion(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.DismissRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	h.service.OptimizeService.Dismiss(ctx, req.SettingName)

	view, err := h.service.OptimizeService.View(ctx)
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse("failed to load suggestions"))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("suggestion dismissed", view))
}

func (h *HttpAPIHandler) runTrial(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.TrialRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}

	result, err := h.service.OptimizeService.RunTrial(ctx, req.Days, req.Strategy)
	if err != nil {
		return h.optimizeErrorResponse(c, err, "failed to run trial backtest")
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("trial completed", result))
}

func (h *HttpAPIHandler) resetTrial(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.service.OptimizeService.ResetTrial(ctx); err != nil {
		return h.optimizeErrorResponse(c, err, "failed to reload baseline comparison")
	}

	view, err := h.service.OptimizeService.View(ctx)
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse("failed to load suggestions"))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("trial reset", view))
}

func (h *HttpAPIHandler) applySuggestions(c echo.Context) error {
	ctx := c.Request().Context()

	count, err := h.service.OptimizeService.Apply(ctx)
	if err != nil {
		return h.optimizeErrorResponse(c, err, "failed to apply suggestions")
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("suggestions applied", map[string]int{"applied_count": count}))
}

func (h *HttpAPIHandler) getTrialHistory(c echo.Context) error {
	records, err := h.service.OptimizeService.History(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to load trial history", nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("success", records))
}

// optimizeErrorResponse maps engine errors onto the response envelope:
// local precondition violations are 4xx, collaborator failures 502.
func (h *HttpAPIHandler) optimizeErrorResponse(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, optimize.ErrEmptySelection):
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("select at least one suggestion first"))
	case errors.Is(err, optimize.ErrBusy):
		return c.JSON(http.StatusConflict, dto.NewBaseResponse(http.StatusConflict, "another operation is in progress", nil))
	case errors.Is(err, optimize.ErrStaleTrial):
		return c.JSON(http.StatusConflict, dto.NewBaseResponse(http.StatusConflict, "trial superseded by a newer request", nil))
	default:
		return c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse(fallback))
	}
}
