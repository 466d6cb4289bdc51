package history

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListHistory)
}

// ListHistory returns paginated history entries
// GET /api/v1/history?page=1&pageSize=50&eventType=film_published
func (h *Handlers) ListHistory(c echo.Context) error {
	opts := ListOptions{
		EventType: c.QueryParam("eventType"),
	}
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		opts.Page = page
	}
	if pageSize, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil {
		opts.PageSize = pageSize
	}

	resp, err := h.service.List(c.Request().Context(), opts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}
