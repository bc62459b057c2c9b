package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/lioia/pagerank/pkg/utils"
)

type computeResponse struct {
	RunID      string           `json:"run_id"`
	Vertices   int              `json:"vertices"`
	Edges      int              `json:"edges"`
	Iterations int              `json:"iterations"`
	Converged  bool             `json:"converged"`
	Residual   float64          `json:"residual"`
	Rows       []map[string]any `json:"rows"`
}

// NewHTTPServer serves POST /pagerank (edge list body, parameters in the
// query string) and GET /healthz
func NewHTTPServer(svc *Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64M"))

	h := &httpHandler{svc: svc}
	e.GET("/healthz", h.health)
	e.POST("/pagerank", h.compute)
	return e
}

type httpHandler struct {
	svc *Service
}

func (h *httpHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *httpHandler) compute(c echo.Context) error {
	params, mode, err := queryParams(c, h.svc.Defaults)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	contents, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("could not read body: %v", err))
	}

	rows := pagerank.NewCollector(0)
	summary, err := h.svc.Compute(c.Request().Context(), contents, c.QueryParam("resource"), params, mode, rows)
	if err != nil {
		_, code := classify(err)
		utils.ServerLog("POST /pagerank failed: %v", err)
		return echo.NewHTTPError(code, err.Error())
	}
	utils.ServerLog("POST /pagerank run %s: %d rows", summary.RunID, summary.Rows)

	resp := computeResponse{
		RunID:      summary.RunID,
		Vertices:   summary.Vertices,
		Edges:      summary.Edges,
		Iterations: summary.Iterations,
		Converged:  summary.Converged,
		Residual:   summary.Residual,
		Rows:       make([]map[string]any, 0, len(rows.Records())),
	}
	for _, rec := range rows.Records() {
		row := make(map[string]any, len(rec))
		for _, f := range rec {
			row[f.Name] = f.Value
		}
		resp.Rows = append(resp.Rows, row)
	}
	return c.JSON(http.StatusOK, resp)
}

func queryParams(c echo.Context, defaults pagerank.Params) (pagerank.Params, pagerank.Mode, error) {
	params := defaults
	var err error
	if v := c.QueryParam(FieldDampingFactor); v != "" {
		if params.DampingFactor, err = strconv.ParseFloat(v, 64); err != nil {
			return params, pagerank.ModeFull, fmt.Errorf("%w: %s: %v", pagerank.ErrInvalidParameter, FieldDampingFactor, err)
		}
	}
	if v := c.QueryParam(FieldMaxIterations); v != "" {
		if params.MaxIterations, err = strconv.Atoi(v); err != nil {
			return params, pagerank.ModeFull, fmt.Errorf("%w: %s: %v", pagerank.ErrInvalidParameter, FieldMaxIterations, err)
		}
	}
	if v := c.QueryParam(FieldStopEpsilon); v != "" {
		if params.StopEpsilon, err = strconv.ParseFloat(v, 64); err != nil {
			return params, pagerank.ModeFull, fmt.Errorf("%w: %s: %v", pagerank.ErrInvalidParameter, FieldStopEpsilon, err)
		}
	}
	mode, err := pagerank.ParseMode(c.QueryParam("mode"))
	if err != nil {
		return params, mode, err
	}
	return params, mode, params.Validate()
}
