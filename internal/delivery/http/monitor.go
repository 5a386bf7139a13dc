package http

import (
	"net/http"
	"trading-dashboard/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupMonitor(base *echo.Group) {
	base.GET("/orb/status", h.getORBStatus)
	base.GET("/settings", h.getSettings)
	base.GET("/theme", h.getTheme)
	base.PUT("/theme", h.putTheme)
	base.POST("/replay", h.runReplay)
}

func (h *HttpAPIHandler) getORBStatus(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := h.service.DashboardService.GetORBStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse("failed to load ORB status"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("success", status))
}

func (h *HttpAPIHandler) getSettings(c echo.Context) error {
	settings, err := h.service.DashboardService.GetSettings(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse("failed to load current settings"))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("success", settings))
}

func (h *HttpAPIHandler) getTheme(c echo.Context) error {
	tokens := h.service.DashboardService.GetTheme(c.Request().Context())
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("success", tokens))
}

func (h *HttpAPIHandler) putTheme(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.ThemePreference)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	if err := h.service.DashboardService.SaveTheme(ctx, *req); err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse("failed to save theme preference"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("theme saved", req))
}

func (h *HttpAPIHandler) runReplay(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.ReplayConfig)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	result, err := h.service.DashboardService.RunReplay(ctx, *req)
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse("failed to run cycle replay"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("success", result))
}
