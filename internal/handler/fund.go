package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fundholdings/internal/service"
)

type FundHandler struct {
	Query  *service.FundQueryService
	Ingest *service.IngestService
	Logger *zap.Logger
}

func (h *FundHandler) Register(r *gin.Engine) {
	r.GET("/api/fund/:symbol", h.getFund)
	r.POST("/api/ingest/run", h.runIngest)
}

// @Summary Get fund metadata and latest holdings snapshot
// @Tags fund
// @Param symbol path string true "fund symbol, e.g. PLTL"
// @Param holdings query []string false "holding symbols to filter by" collectionFormat(multi)
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/fund/{symbol} [get]
func (h *FundHandler) getFund(c *gin.Context) {
	if h.Query == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	symbol := c.Param("symbol")
	filter := c.QueryArray("holdings")

	view, err := h.Query.Lookup(c.Request.Context(), symbol, filter)
	if err != nil {
		var nf *service.NotFoundError
		if errors.As(err, &nf) {
			Error(c, http.StatusNotFound, nf.Error(), nil)
			return
		}
		if h.Logger != nil {
			h.Logger.Warn("fund lookup failed", zap.String("symbol", symbol), zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, view, nil)
}

// @Summary Run a holdings ingestion batch
// @Tags ingest
// @Success 200 {object} apiResponse
// @Router /api/ingest/run [post]
func (h *FundHandler) runIngest(c *gin.Context) {
	if h.Ingest == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	result, err := h.Ingest.Run(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("ingest run failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, result, nil)
}
