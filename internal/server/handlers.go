package server

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/KaramelBytes/dataprep/internal/analysis"
	"github.com/KaramelBytes/dataprep/internal/dataset"
	"github.com/KaramelBytes/dataprep/internal/logger"
	"github.com/KaramelBytes/dataprep/internal/preprocess"
)

// request is the body shared by all dataset endpoints: the dataset payload
// plus optional preprocessing options at the top level.
type request struct {
	dataset.Payload
	preprocess.Options
}

type handler struct {
	s *Server
}

func (h *handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.POST("/analyze", h.Analyze)
	api.POST("/preprocess", h.Preprocess)
	api.POST("/automate", h.Automate)
	api.POST("/download", h.Download)
	api.POST("/outliers", h.Outliers)
}

func (h *handler) bind(c echo.Context) (*dataset.Dataset, preprocess.Options, error) {
	var req request
	if err := c.Echo().JSONSerializer.Deserialize(c, &req); err != nil {
		return nil, preprocess.Options{}, err
	}
	if req.Rows == nil {
		return nil, preprocess.Options{}, echo.NewHTTPError(http.StatusBadRequest, "rows are required")
	}
	d := dataset.FromPayload(req.Payload)
	logger.WithDataset(h.s.log, d).Debug("dataset received",
		zap.Int("rows", d.Len()), zap.Int("columns", len(d.Columns)))
	return d, req.Options, nil
}

// Analyze returns the Analysis of the posted rows, or its Markdown report
// with ?format=markdown.
func (h *handler) Analyze(c echo.Context) error {
	d, _, err := h.bind(c)
	if err != nil {
		return err
	}
	a, err := within(c, h.s.cfg.RequestTimeout, func(context.Context) (*analysis.Analysis, error) {
		return h.s.tr.Analyze(d), nil
	})
	if err != nil {
		return err
	}
	if c.QueryParam("format") == "markdown" {
		return c.String(http.StatusOK, a.Markdown("", d.Steps))
	}
	return c.JSON(http.StatusOK, a)
}

// Preprocess applies the requested steps and returns
// {data, analysis, preprocessingSteps}.
func (h *handler) Preprocess(c echo.Context) error {
	d, opt, err := h.bind(c)
	if err != nil {
		return err
	}
	if err := opt.Validate(); err != nil {
		return err
	}
	res, err := within(c, h.s.cfg.RequestTimeout, func(ctx context.Context) (*preprocess.Result, error) {
		return h.s.tr.Apply(ctx, d, opt)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Automate runs the default pipeline; options in the body override it.
func (h *handler) Automate(c echo.Context) error {
	d, opt, err := h.bind(c)
	if err != nil {
		return err
	}
	if err := opt.Validate(); err != nil {
		return err
	}
	res, err := within(c, h.s.cfg.RequestTimeout, func(ctx context.Context) (*preprocess.AutomateResult, error) {
		return h.s.tr.Automate(ctx, d, opt)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Download serializes the posted dataset as CSV (default) or JSON.
func (h *handler) Download(c echo.Context) error {
	d, _, err := h.bind(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	switch format := c.QueryParam("format"); format {
	case "", "csv":
		if err := dataset.WriteCSV(&buf, d, h.s.cfg.Delimiter); err != nil {
			return err
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="dataset.csv"`)
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	case "json":
		if err := dataset.WriteJSON(&buf, d); err != nil {
			return err
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="dataset.json"`)
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, buf.Bytes())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported format "+format+" (use csv or json)")
	}
}

// Outliers returns the IQR whiskers and outlier row indices of ?column=.
func (h *handler) Outliers(c echo.Context) error {
	name := c.QueryParam("column")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "column is required")
	}
	d, _, err := h.bind(c)
	if err != nil {
		return err
	}
	a := h.s.tr.Analyze(d)
	p, ok := a.Profile(name)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown column "+name)
	}
	if p.Type != analysis.Numeric {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "column "+name+" is "+string(p.Type)+", not numeric")
	}
	return c.JSON(http.StatusOK, analysis.ColumnOutliers(d, a, name, h.s.tr.OutlierFence()))
}

// within runs fn under the request timeout. The pipeline itself only checks
// ctx between steps, so a timed-out call returns early and the work is
// discarded.
func within[T any](c echo.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx := c.Request().Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		ch <- result{v, err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
