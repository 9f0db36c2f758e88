package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/deul428/logis-quotation/models"
	"github.com/deul428/logis-quotation/services"
	"github.com/deul428/logis-quotation/utils"
)

// ExportHandler streams the result sheet as an xlsx download.
type ExportHandler struct {
	quotes *services.QuoteService
	log    *zap.Logger
}

func NewExportHandler(quotes *services.QuoteService, log *zap.Logger) *ExportHandler {
	return &ExportHandler{quotes: quotes, log: log}
}

// Export handles GET /api/console/export.
func (h *ExportHandler) Export(c *gin.Context) {
	rows, err := h.quotes.ReadAll()
	if err != nil {
		utils.RequestLogger(c, h.log).Error("export read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("내보내기 중 오류가 발생했습니다."))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "견적 내역"
	f.SetSheetName("Sheet1", sheetName)

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err == nil {
				err = f.SetCellValue(sheetName, cell, value)
			}
			if err != nil {
				utils.RequestLogger(c, h.log).Error("export cell write failed",
					zap.Int("row", rowIdx), zap.Int("col", colIdx), zap.Error(err))
				c.JSON(http.StatusInternalServerError, models.ErrorResponse("내보내기 중 오류가 발생했습니다."))
				return
			}
		}
	}

	filename := fmt.Sprintf("quotes_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		utils.RequestLogger(c, h.log).Error("export write failed", zap.Error(err))
	}
}
