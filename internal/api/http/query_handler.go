package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/hio-docpipe/config"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/auth"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/logging"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/metrics"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/query"
)

const maxQueryBody = 1 << 20

const (
	msgInvalidRequest = "Invalid request. JSON payload with 'query' key is required."
	msgConfigError    = "Server configuration error."
	msgInternalError  = "Internal server error"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

type QueryHandler struct {
	svc    *query.Service
	logger *zap.Logger
}

func NewQueryHandler(svc *query.Service, logger *zap.Logger) *QueryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryHandler{svc: svc, logger: logger}
}

// Query answers POST {"query": "..."}.
func (h *QueryHandler) Query(c *gin.Context) {
	log := logging.FromContext(c.Request.Context(), h.logger)
	if uid := auth.UserFirebaseUID(c); uid != "" {
		log = log.With(zap.String("firebase_uid", uid))
	}

	if err := h.svc.ConfigErr(); err != nil {
		log.Error("query rejected, server not configured", zap.Error(err))
		h.fail(c, http.StatusInternalServerError, configMessage(err))
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxQueryBody))
	if err != nil {
		log.Warn("failed to read request body", zap.Error(err))
		h.fail(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	q, err := query.ParseRequest(body)
	if err != nil {
		log.Info("invalid query request", zap.Error(err))
		h.fail(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	resp, err := h.svc.Answer(c.Request.Context(), q)
	if err != nil {
		log.Error("error processing query", zap.Error(err))
		if errors.Is(err, query.ErrConfigMissing) {
			h.fail(c, http.StatusInternalServerError, configMessage(err))
			return
		}
		h.fail(c, http.StatusInternalServerError, msgInternalError)
		return
	}

	metrics.RecordQuery(strconv.Itoa(http.StatusOK))
	c.JSON(http.StatusOK, resp)
}

// MethodNotAllowed is used as the engine's NoMethod handler.
func (h *QueryHandler) MethodNotAllowed(c *gin.Context) {
	h.fail(c, http.StatusMethodNotAllowed, "Method not allowed. Use POST.")
}

func (h *QueryHandler) RegisterRoutes(r gin.IRoutes, paths ...string) {
	for _, p := range paths {
		r.POST(p, h.Query)
	}
}

func (h *QueryHandler) fail(c *gin.Context, status int, msg string) {
	metrics.RecordQuery(strconv.Itoa(status))
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

// configMessage names the missing variables without exposing anything else.
func configMessage(err error) string {
	var missing *config.MissingError
	if errors.As(err, &missing) {
		return missing.Error()
	}
	return msgConfigError
}
