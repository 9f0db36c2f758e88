package services

import (
	"strings"

	"go.uber.org/zap"

	"github.com/deul428/logis-quotation/models"
	"github.com/deul428/logis-quotation/storage"
	"github.com/deul428/logis-quotation/utils"
)

// Directory sheets. Both are operator-maintained lookup tables.
const (
	EstimatorSheetName = "견적상품_견적담당자_리스트"
	SalesSheetName     = "영업담당자_리스트"
)

// ManagerService resolves internal staff from the directory sheets. Both
// lookups are header-driven with a fixed-position fallback for sheets that
// predate named headers, and both degrade to a sentinel instead of failing:
// a miss only means no notification mail goes out.
type ManagerService struct {
	store storage.Store
	log   *zap.Logger
}

func NewManagerService(store storage.Store, log *zap.Logger) *ManagerService {
	return &ManagerService{store: store, log: log}
}

// ResolveEstimator maps a product name to the estimator responsible for
// pricing it. Matching is whitespace-insensitive, exact first then mutual
// containment, first row wins. Returns the 미지정 sentinel on any miss.
func (s *ManagerService) ResolveEstimator(productName string) models.ManagerInfo {
	unassigned := models.ManagerInfo{Name: models.UnassignedManager, Email: ""}

	input := utils.NormalizeHeader(productName)
	if input == "" {
		return unassigned
	}

	sheet, err := s.store.Sheet(EstimatorSheetName)
	if err != nil {
		s.log.Warn("estimator directory missing", zap.Error(err))
		return unassigned
	}
	rows, err := sheet.ReadAllRows()
	if err != nil || len(rows) < 2 {
		return unassigned
	}
	headers := rows[0]

	productCol := utils.FindColumn(headers, []string{"상품명", "상품"})
	managerCol := utils.FindColumn(headers, []string{"담당자", "견적담당자"})
	emailCol := utils.FindColumn(headers, []string{"담당자메일", "담당자 메일", "이메일", "메일"})

	// Legacy sheet layout without named headers.
	if productCol == -1 {
		productCol = 0
	}
	if managerCol == -1 {
		managerCol = 4
	}
	if emailCol == -1 {
		emailCol = 5
	}

	for _, row := range rows[1:] {
		key := utils.NormalizeHeader(cellAt(row, productCol))
		if key == "" {
			continue
		}
		if input == key || strings.Contains(input, key) || strings.Contains(key, input) {
			name := strings.TrimSpace(cellAt(row, managerCol))
			if name == "" {
				name = models.UnassignedManager
			}
			return models.ManagerInfo{Name: name, Email: strings.TrimSpace(cellAt(row, emailCol))}
		}
	}
	return unassigned
}

// ResolveSalesManager maps a sales rep's display name to their directory
// entry. An unmatched name comes back with the input name and no email.
func (s *ManagerService) ResolveSalesManager(repName string) models.ManagerInfo {
	name := strings.TrimSpace(repName)
	if name == "" {
		return models.ManagerInfo{}
	}
	fallback := models.ManagerInfo{Name: name, Email: ""}

	sheet, err := s.store.Sheet(SalesSheetName)
	if err != nil {
		s.log.Warn("sales directory missing", zap.Error(err))
		return fallback
	}
	rows, err := sheet.ReadAllRows()
	if err != nil || len(rows) < 2 {
		return fallback
	}
	headers := rows[0]

	nameCol := utils.FindColumn(headers, []string{"영업담당자", "영업담당자명", "담당자", "이름"})
	emailCol := utils.FindColumn(headers, []string{"영업담당자메일", "영업담당자 메일", "메일", "이메일"})
	if emailCol == -1 {
		s.log.Warn("sales directory has no email column")
		return fallback
	}

	target := utils.NormalizeHeader(name)
	for _, row := range rows[1:] {
		rowName := ""
		if nameCol != -1 {
			rowName = utils.NormalizeHeader(cellAt(row, nameCol))
		}
		if rowName == "" {
			continue
		}
		if rowName == target || strings.Contains(rowName, target) || strings.Contains(target, rowName) {
			resolved := name
			if nameCol != -1 {
				resolved = strings.TrimSpace(cellAt(row, nameCol))
			}
			return models.ManagerInfo{Name: resolved, Email: strings.TrimSpace(cellAt(row, emailCol))}
		}
	}
	return fallback
}

func cellAt(row []string, col int) string {
	if col >= 0 && col < len(row) {
		return row[col]
	}
	return ""
}
