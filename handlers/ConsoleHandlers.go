package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/deul428/logis-quotation/models"
	"github.com/deul428/logis-quotation/repository"
	"github.com/deul428/logis-quotation/services"
	"github.com/deul428/logis-quotation/utils"
)

// ConsoleHandler serves the admin console: reads over the result sheet and
// the write actions on individual records.
type ConsoleHandler struct {
	quotes *services.QuoteService
	log    *zap.Logger
}

func NewConsoleHandler(quotes *services.QuoteService, log *zap.Logger) *ConsoleHandler {
	return &ConsoleHandler{quotes: quotes, log: log}
}

// Read handles GET /api/console. The action query parameter selects the
// read: readAll, readSpecific (estimateNum) or readFiltered (status,
// company, manager).
func (h *ConsoleHandler) Read(c *gin.Context) {
	action := c.DefaultQuery("action", "readAll")

	switch action {
	case "readAll":
		rows, err := h.quotes.ReadAll()
		if err != nil {
			h.readError(c, err)
			return
		}
		count := 0
		if len(rows) > 1 {
			count = len(rows) - 1
		}
		c.JSON(http.StatusOK, models.Response{Status: "success", Data: rows, Count: count})

	case "readSpecific":
		estimateNum := c.Query("estimateNum")
		if strings.TrimSpace(estimateNum) == "" {
			c.JSON(http.StatusBadRequest, models.FailResponse("견적번호가 필요합니다."))
			return
		}
		record, err := h.quotes.ReadByEstimateNum(estimateNum)
		if err != nil {
			h.readError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.Response{Status: "success", Data: record})

	case "readFiltered":
		rows, err := h.quotes.ReadFiltered(c.Query("status"), c.Query("company"), c.Query("manager"))
		if err != nil {
			h.readError(c, err)
			return
		}
		count := 0
		if len(rows) > 1 {
			count = len(rows) - 1
		}
		c.JSON(http.StatusOK, models.Response{Status: "success", Data: rows, Count: count})

	default:
		c.JSON(http.StatusBadRequest, models.FailResponse(fmt.Sprintf("알 수 없는 action입니다: %s", action)))
	}
}

// Write handles POST /api/console. The action field of the body selects the
// mutation. updateEstimate actions carry their kind as a suffix
// (updateEstimate_cost, updateEstimate_memo, updateEstimate_all).
func (h *ConsoleHandler) Write(c *gin.Context) {
	var req models.ConsoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.FailResponse("action이 필요합니다."))
		return
	}

	switch {
	case strings.HasPrefix(req.Action, "updateEstimate"):
		h.updateEstimate(c, req)
	case req.Action == "updateStatus":
		h.updateStatus(c, req)
	case req.Action == "updateManager":
		h.updateManager(c, req)
	case req.Action == "sendToSalesManager":
		h.dispatch(c, req)
	default:
		c.JSON(http.StatusBadRequest, models.FailResponse(fmt.Sprintf("알 수 없는 action입니다: %s", req.Action)))
	}
}

func (h *ConsoleHandler) updateEstimate(c *gin.Context, req models.ConsoleRequest) {
	kind := strings.TrimPrefix(req.Action, "updateEstimate")
	kind = strings.TrimPrefix(kind, "_")
	if kind == "" {
		kind = "all"
	}

	message, err := h.quotes.UpdateEstimate(kind, req.EstimateNum, req.NewAmount, req.NewMemo)
	if err != nil {
		h.writeError(c, req.EstimateNum, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{
		Status:      "success",
		Message:     message,
		EstimateNum: req.EstimateNum,
		NewAmount:   req.NewAmount,
		NewMemo:     req.NewMemo,
	})
}

func (h *ConsoleHandler) updateStatus(c *gin.Context, req models.ConsoleRequest) {
	if err := h.quotes.UpdateStatus(req.EstimateNum, req.NewStatus); err != nil {
		h.writeError(c, req.EstimateNum, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{
		Status:      "success",
		Message:     "상태 업데이트 완료",
		EstimateNum: req.EstimateNum,
		NewStatus:   req.NewStatus,
	})
}

func (h *ConsoleHandler) updateManager(c *gin.Context, req models.ConsoleRequest) {
	if err := h.quotes.UpdateManager(req.EstimateNum, req.NewManager); err != nil {
		h.writeError(c, req.EstimateNum, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{
		Status:      "success",
		Message:     "견적담당자 업데이트 완료",
		EstimateNum: req.EstimateNum,
		NewManager:  req.NewManager,
	})
}

func (h *ConsoleHandler) dispatch(c *gin.Context, req models.ConsoleRequest) {
	recipient, err := h.quotes.DispatchToSalesManager(req.Row)
	if err != nil {
		if errors.Is(err, services.ErrNoSalesEmail) {
			c.JSON(http.StatusOK, models.FailResponse(err.Error()))
			return
		}
		estimateNum := ""
		if req.Row != nil {
			estimateNum = req.Row.EstimateNum
		}
		h.writeError(c, estimateNum, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{
		Status:    "success",
		Message:   "영업 담당자에게 발송되었습니다.",
		Recipient: recipient,
	})
}

func (h *ConsoleHandler) readError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrEstimateNotFound) {
		c.JSON(http.StatusNotFound, models.FailResponse("견적번호를 찾을 수 없습니다."))
		return
	}
	utils.RequestLogger(c, h.log).Error("console read failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, models.ErrorResponse("데이터 조회 중 오류가 발생했습니다."))
}

func (h *ConsoleHandler) writeError(c *gin.Context, estimateNum string, err error) {
	if errors.Is(err, repository.ErrEstimateNotFound) {
		c.JSON(http.StatusNotFound, models.FailResponse(
			fmt.Sprintf("견적번호를 찾을 수 없습니다: %s", estimateNum)))
		return
	}
	utils.RequestLogger(c, h.log).Error("console write failed",
		zap.String("estimate_num", estimateNum), zap.Error(err))
	c.JSON(http.StatusInternalServerError, models.ErrorResponse("업데이트 중 오류가 발생했습니다."))
}
