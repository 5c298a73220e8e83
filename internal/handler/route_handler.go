package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"tourgether/internal/errors"
	"tourgether/internal/model"
	"tourgether/internal/service"
)

// RouteHandler handles route upload, listing and membership endpoints.
type RouteHandler struct {
	routeService service.RouteService
}

// NewRouteHandler creates a new route handler.
func NewRouteHandler(routeService service.RouteService) *RouteHandler {
	return &RouteHandler{routeService: routeService}
}

// RouteResponse is the external representation of a route. The id is rendered
// as an opaque string and the rider set as a list of user id strings.
type RouteResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	GPX             string    `json:"gpx"`
	OwnerID         string    `json:"owner_id"`
	OwnerName       string    `json:"owner_name"`
	StartTime       time.Time `json:"start_time"`
	StartPoint      string    `json:"start_point"`
	RegisteredUsers []string  `json:"registered_users"`
}

// BatchUsersRequest asks for display names of a set of user ids.
type BatchUsersRequest struct {
	UserIDs []string `json:"user_ids" validate:"required"`
}

func toRouteResponse(route *model.Route) RouteResponse {
	riderIDs := route.RiderIDs()
	riders := make([]string, 0, len(riderIDs))
	for _, id := range riderIDs {
		riders = append(riders, id.String())
	}
	return RouteResponse{
		ID:              route.ID.String(),
		Name:            route.Name,
		GPX:             route.GPX,
		OwnerID:         route.OwnerID.String(),
		OwnerName:       route.OwnerName,
		StartTime:       route.StartTime,
		StartPoint:      route.StartPoint,
		RegisteredUsers: riders,
	}
}

// userIDFromContext extracts the authenticated user's id from the JWT set by
// the echo-jwt middleware.
func userIDFromContext(c echo.Context) (uuid.UUID, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	raw, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	return userID, nil
}

// Upload godoc
// @Summary Upload a GPX route
// @Tags routes
// @Accept mpfd
// @Produce json
// @Param gpx_file formData file true "GPX file"
// @Param name formData string false "Route name"
// @Param start_time formData string true "Start time (RFC3339)"
// @Param start_point formData string true "Start point"
// @Success 201 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /upload_gpx [post]
func (h *RouteHandler) Upload(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("gpx_file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "gpx_file is required",
			Code:  "INVALID_INPUT",
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "could not read gpx_file",
			Code:  "INVALID_INPUT",
		})
	}
	defer file.Close()

	// Stored opaquely, never parsed.
	gpx, err := io.ReadAll(file)
	if err != nil || len(gpx) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "could not read gpx_file",
			Code:  "INVALID_INPUT",
		})
	}

	startPoint := c.FormValue("start_point")
	if startPoint == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "start_point is required",
			Code:  "INVALID_INPUT",
		})
	}

	startTime, err := time.Parse(time.RFC3339, c.FormValue("start_time"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "start_time must be RFC3339",
			Code:  "INVALID_INPUT",
		})
	}

	name := c.FormValue("name")
	if name == "" {
		name = fileHeader.Filename
	}

	route, err := h.routeService.CreateRoute(c.Request().Context(), string(gpx), name, userID, startTime, startPoint)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"route_id": route.ID.String(),
	})
}

// List godoc
// @Summary List all routes
// @Tags routes
// @Produce json
// @Success 200 {array} RouteResponse
// @Router /routes [get]
func (h *RouteHandler) List(c echo.Context) error {
	routes, err := h.routeService.ListRoutes(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	resp := make([]RouteResponse, 0, len(routes))
	for i := range routes {
		resp = append(resp, toRouteResponse(&routes[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get a single route
// @Tags routes
// @Produce json
// @Param id path string true "Route id"
// @Success 200 {object} RouteResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /routes/{id} [get]
func (h *RouteHandler) Get(c echo.Context) error {
	route, err := h.routeService.GetRoute(c.Request().Context(), c.Param("id"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, toRouteResponse(route))
}

// Join godoc
// @Summary Join a route as a rider
// @Tags routes
// @Produce json
// @Param id path string true "Route id"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /routes/{id}/ride [post]
func (h *RouteHandler) Join(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	result, err := h.routeService.Join(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	switch result {
	case service.MembershipRouteNotFound:
		return echo.NewHTTPError(http.StatusNotFound, errors.ErrorResponse{
			Error: "route not found",
			Code:  "ROUTE_NOT_FOUND",
		})
	case service.MembershipNoChange:
		return c.JSON(http.StatusOK, map[string]string{
			"message": "already registered",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "registered for route",
	})
}

// Leave godoc
// @Summary Leave a route
// @Tags routes
// @Produce json
// @Param id path string true "Route id"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /routes/{id}/ride [delete]
func (h *RouteHandler) Leave(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	result, err := h.routeService.Leave(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	switch result {
	case service.MembershipRouteNotFound:
		return echo.NewHTTPError(http.StatusNotFound, errors.ErrorResponse{
			Error: "route not found",
			Code:  "ROUTE_NOT_FOUND",
		})
	case service.MembershipNoChange:
		return c.JSON(http.StatusOK, map[string]string{
			"message": "not registered",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "unregistered from route",
	})
}

// BatchUsers godoc
// @Summary Resolve display names for a set of user ids
// @Tags users
// @Accept json
// @Produce json
// @Param request body BatchUsersRequest true "User ids"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/batch [post]
func (h *RouteHandler) BatchUsers(c echo.Context) error {
	var req BatchUsersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ids := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			// Malformed ids behave like unknown ids: silently skipped.
			continue
		}
		ids = append(ids, id)
	}

	names, err := h.routeService.UserNames(c.Request().Context(), ids)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	resp := make(map[string]string, len(names))
	for id, name := range names {
		resp[id.String()] = name
	}
	return c.JSON(http.StatusOK, resp)
}
