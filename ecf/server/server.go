// Package server exposes ECF lookups over HTTP.
package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sot/chandra-ecf/ecf"
)

// InterpResponse is the body of GET /v1/interp.
type InterpResponse struct {
	ECF    float64 `json:"ecf"`
	Theta  float64 `json:"theta"`
	Phi    float64 `json:"phi"`
	Energy float64 `json:"energy"`
	Shape  string  `json:"shape"`
	Field  string  `json:"field"`
	Value  float64 `json:"value"`
}

// ECFResponse is the body of GET /v1/ecf.
type ECFResponse struct {
	Radius float64 `json:"radius"`
	Theta  float64 `json:"theta"`
	Phi    float64 `json:"phi"`
	Energy float64 `json:"energy"`
	ECF    float64 `json:"ecf"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewRouter returns the HTTP handler serving lookups from cat.
func NewRouter(cat *ecf.Catalog) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	h := &handler{cat: cat}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logrus.StandardLogger()))
	router.GET("/v1/interp", h.interp)
	router.GET("/v1/ecf", h.ecfForRadius)
	router.GET("/v1/shapes", h.shapes)
	router.GET("/v1/shapes/:shape/fields", h.fields)
	return router
}

type handler struct {
	cat *ecf.Catalog
}

func (h *handler) interp(c *gin.Context) {
	q := ecf.DefaultQuery()
	var err error
	if q.ECF, err = floatParam(c, "ecf", q.ECF); err != nil {
		abort(c, err)
		return
	}
	if q.Theta, err = floatParam(c, "theta", q.Theta); err != nil {
		abort(c, err)
		return
	}
	if q.Phi, err = floatParam(c, "phi", q.Phi); err != nil {
		abort(c, err)
		return
	}
	if q.Energy, err = floatParam(c, "energy", q.Energy); err != nil {
		abort(c, err)
		return
	}
	if q.Shape, err = ecf.ParseShape(c.DefaultQuery("shape", string(q.Shape))); err != nil {
		abort(c, err)
		return
	}
	q.Field = c.DefaultQuery("value", q.Field)

	v, err := h.cat.Interpolate(q)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, InterpResponse{
		ECF: q.ECF, Theta: q.Theta, Phi: q.Phi, Energy: q.Energy,
		Shape: string(q.Shape), Field: q.Field, Value: v,
	})
}

func (h *handler) ecfForRadius(c *gin.Context) {
	resp := ECFResponse{Radius: 1.0, Energy: 1.5}
	var err error
	if resp.Radius, err = floatParam(c, "radius", resp.Radius); err != nil {
		abort(c, err)
		return
	}
	if resp.Theta, err = floatParam(c, "theta", resp.Theta); err != nil {
		abort(c, err)
		return
	}
	if resp.Phi, err = floatParam(c, "phi", resp.Phi); err != nil {
		abort(c, err)
		return
	}
	if resp.Energy, err = floatParam(c, "energy", resp.Energy); err != nil {
		abort(c, err)
		return
	}

	if resp.ECF, err = h.cat.ECFForRadius(resp.Radius, resp.Theta, resp.Phi, resp.Energy); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) shapes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"shapes": ecf.ShapeNames()})
}

func (h *handler) fields(c *gin.Context) {
	shape, err := ecf.ParseShape(c.Param("shape"))
	if err != nil {
		abort(c, err)
		return
	}
	g, err := h.cat.Grid(shape)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shape": string(shape), "fields": g.Fields()})
}

// badParamError marks a query parameter that is not a number.
type badParamError struct {
	name, raw string
}

func (e *badParamError) Error() string {
	return fmt.Sprintf("query parameter %s=%q is not a number", e.name, e.raw)
}

func floatParam(c *gin.Context, name string, def float64) (float64, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return 0, &badParamError{name: name, raw: raw}
	}
	return v, nil
}

// statusFor maps lookup errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		use *ecf.UnknownShapeError
		ufe *ecf.UnknownFieldError
		oor *ecf.OutOfRangeError
		bpe *badParamError
	)
	switch {
	case errors.As(err, &use):
		return http.StatusNotFound
	case errors.As(err, &ufe), errors.As(err, &oor), errors.As(err, &bpe):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), ErrorResponse{Error: err.Error()})
}

// requestLogger logs one line per request through logger.
func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		statusCode := c.Writer.Status()

		entry := logger.WithFields(logrus.Fields{
			"statusCode": statusCode,
			"latency":    latency.String(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      c.Request.URL.RawQuery,
		})

		msg := fmt.Sprintf("%s %s %d (%s)", c.Request.Method, path, statusCode, latency)
		switch {
		case statusCode >= http.StatusInternalServerError:
			entry.Error(msg + ": " + c.Errors.String())
		case statusCode >= http.StatusBadRequest:
			entry.Warn(msg)
		default:
			entry.Debug(msg)
		}
	}
}
