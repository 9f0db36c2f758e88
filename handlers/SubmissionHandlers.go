package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/deul428/logis-quotation/models"
	"github.com/deul428/logis-quotation/services"
	"github.com/deul428/logis-quotation/utils"
)

// SubmissionHandler serves the user-mode inquiry endpoint.
type SubmissionHandler struct {
	quotes *services.QuoteService
	log    *zap.Logger
}

func NewSubmissionHandler(quotes *services.QuoteService, log *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{quotes: quotes, log: log}
}

// Submit handles POST /api/inquiry. The inquiry text is stored on the intake
// sheet and parsed into quote records in the same request.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req models.InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.FailResponse("견적 문의 내용이 필요합니다."))
		return
	}

	sub := models.RawSubmission{
		Timestamp:    time.Now().Format(time.RFC3339),
		SalesRepName: req.SalesRepName,
		RawText:      req.RawText,
	}

	nums, err := h.quotes.HandleSubmission(sub)
	if err != nil {
		utils.RequestLogger(c, h.log).Error("submission failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("견적 요청 처리 중 오류가 발생했습니다."))
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Status:  "success",
		Message: "견적 요청이 접수되었습니다.",
		Data:    gin.H{"estimateNums": nums},
		Count:   len(nums),
	})
}
