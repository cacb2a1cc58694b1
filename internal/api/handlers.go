package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"playbook-lab/internal/backtest"
	"playbook-lab/internal/config"
	"playbook-lab/internal/domain"
	"playbook-lab/internal/observability"
)

// Runner runs one playbook configuration.
type Runner interface {
	Run(ctx context.Context, cfg domain.BacktestConfig) (*backtest.Result, error)
}

// Stream message types.
const (
	MessageRow     = "row"
	MessageSummary = "summary"
	MessageError   = "error"
)

// StreamMessage is one websocket frame of a streamed run.
type StreamMessage struct {
	Type     string       `json:"type"`
	ConfigID string       `json:"config_id,omitempty"`
	Row      *DayRow      `json:"row,omitempty"`
	Summary  *SummaryView `json:"summary,omitempty"`
	Error    *ErrorDetail `json:"error,omitempty"`
}

// BacktestHandler serves backtest runs.
type BacktestHandler struct {
	runner       Runner
	metrics      *observability.Metrics
	logger       *log.Logger
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

// NewBacktestHandler creates a new backtest handler.
func NewBacktestHandler(runner Runner, m *observability.Metrics, logger *log.Logger) *BacktestHandler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &BacktestHandler{
		runner:  runner,
		metrics: m,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		writeTimeout: 10 * time.Second,
	}
}

// Health handles GET /health.
func (h *BacktestHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunBacktest handles POST /api/v1/backtests.
// The body is a config document; an empty body runs the defaults.
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req config.File
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	cfg, err := req.Build()
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := h.runner.Run(c.Request.Context(), cfg)
	if err != nil {
		h.logger.Printf("run failed (request %s): %v", c.GetString(requestIDKey), err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBacktestResponse(res))
}

// StreamBacktest handles GET /api/v1/backtests/stream.
// The client sends one config document after the upgrade and receives one
// "row" message per day, most recent first, then a "summary" message.
func (h *BacktestHandler) StreamBacktest(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already replied to the client
		return
	}
	defer conn.Close()

	var req config.File
	if err := conn.ReadJSON(&req); err != nil {
		h.send(conn, StreamMessage{Type: MessageError, Error: &ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()}})
		return
	}

	cfg, err := req.Build()
	if err != nil {
		_, detail := classify(err)
		h.send(conn, StreamMessage{Type: MessageError, Error: &detail})
		return
	}

	res, err := h.runner.Run(c.Request.Context(), cfg)
	if err != nil {
		h.logger.Printf("stream run failed: %v", err)
		_, detail := classify(err)
		h.send(conn, StreamMessage{Type: MessageError, Error: &detail})
		return
	}

	for i := range res.Rows {
		row := NewDayRow(res.ConfigID, &res.Rows[i])
		if err := h.send(conn, StreamMessage{Type: MessageRow, ConfigID: res.ConfigID, Row: &row}); err != nil {
			h.logger.Printf("stream write failed: %v", err)
			return
		}
	}

	summary := NewBacktestResponse(res).Summary
	if err := h.send(conn, StreamMessage{Type: MessageSummary, ConfigID: res.ConfigID, Summary: summary}); err != nil {
		h.logger.Printf("stream write failed: %v", err)
		return
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(h.writeTimeout))
}

func (h *BacktestHandler) send(conn *websocket.Conn, msg StreamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
		return err
	}
	if err := conn.WriteJSON(msg); err != nil {
		return err
	}
	h.metrics.RecordStreamMessage()
	return nil
}

func writeError(c *gin.Context, err error) {
	status, detail := classify(err)
	if id := c.GetString(requestIDKey); id != "" {
		detail.Details = map[string]any{"request_id": id}
	}
	c.JSON(status, ErrorResponse{Error: detail})
}

// classify maps domain errors to HTTP status codes.
func classify(err error) (int, ErrorDetail) {
	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		return http.StatusBadRequest, ErrorDetail{Code: "INVALID_CONFIG", Message: err.Error()}
	case errors.Is(err, backtest.ErrDataNotFound):
		return http.StatusNotFound, ErrorDetail{Code: "DATA_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, ErrorDetail{Code: "CANCELED", Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorDetail{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
}
