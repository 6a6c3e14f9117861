package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/videos"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/utils"
	"github.com/labstack/echo/v4"
)

const (
	msgNoMessage     = "Bad Request: no Pub/Sub message received"
	msgInvalidFormat = "Bad Request: invalid Pub/Sub message format"
	msgAck           = "Ack"

	maxEnvelopeBytes = 1 << 20
)

type videoHandler struct {
	videoUC videos.UseCase
	logger  logger.Logger
}

func NewVideoHandler(videoUC videos.UseCase, log logger.Logger) videos.Handler {
	return &videoHandler{
		videoUC: videoUC,
		logger:  log,
	}
}

// Push receives a push-subscription delivery. Only an unreadable envelope is
// rejected; everything else is acknowledged so the broker does not redeliver.
func (h *videoHandler) Push() echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxEnvelopeBytes))
		if err != nil || len(strings.TrimSpace(string(body))) == 0 {
			h.logger.Warnf("Push - empty body RequestID: %s", utils.GetRequestID(c))
			return c.String(http.StatusBadRequest, msgNoMessage)
		}

		envelope := &models.PushEnvelope{}
		if err = json.Unmarshal(body, envelope); err != nil || envelope.Message == nil {
			h.logger.Warnf("Push - malformed envelope RequestID: %s", utils.GetRequestID(c))
			return c.String(http.StatusBadRequest, msgInvalidFormat)
		}

		event, err := models.DecodeEvent(envelope.Message)
		if err != nil {
			h.logger.Warnf("Push - dropping message %s: %v", envelope.Message.MessageID, err)
			return c.String(http.StatusOK, msgAck)
		}
		if event == nil {
			h.logger.Debugf("Push - ignoring message %s", envelope.Message.MessageID)
			return c.String(http.StatusOK, msgAck)
		}
		if err = h.videoUC.Submit(c.Request().Context(), event); err != nil {
			h.logger.Errorf("Push - Submit error for message %s: %v", envelope.Message.MessageID, err)
		}
		return c.String(http.StatusOK, msgAck)
	}
}

func (h *videoHandler) ListQueue() echo.HandlerFunc {
	return func(c echo.Context) error {
		pagination, err := utils.GetPaginationFromCtx(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		list, err := h.videoUC.ListQueue(c.Request().Context(), pagination)
		if err != nil {
			h.logger.Errorf("ListQueue error RequestID: %s: %v", utils.GetRequestID(c), err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list queue"})
		}
		return c.JSON(http.StatusOK, list)
	}
}

func (h *videoHandler) Health() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	}
}
