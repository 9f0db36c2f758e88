package repository

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/deul428/logis-quotation/models"
	"github.com/deul428/logis-quotation/storage"
	"github.com/deul428/logis-quotation/utils"
)

// IntakeSheetNames are the candidate names of the submission sheet. Form
// backends name it differently depending on locale and how many response
// sheets exist, so the first one present wins.
var IntakeSheetNames = []string{
	"설문지 응답", "Form responses 1", "Form responses 2", "Form_responses",
}

const (
	intakeStatusHeader  = "처리상태"
	intakeRawTextHeader = "견적 문의 내용"
)

// defaultIntakeHeaders seed a freshly created intake sheet (API submissions
// on an empty store).
var defaultIntakeHeaders = []string{"타임스탬프", intakeRawTextHeader, "영업담당자", intakeStatusHeader}

// IntakeRepository reads submission rows from the intake sheet and tracks
// their processing status. Columns are found by header name with a fixed
// positional fallback (0 for timestamp, 1 for the inquiry text) so legacy
// sheets without named headers keep working.
type IntakeRepository struct {
	store storage.Store
	log   *zap.Logger
}

func NewIntakeRepository(store storage.Store, log *zap.Logger) *IntakeRepository {
	return &IntakeRepository{store: store, log: log}
}

// Sheet returns the first existing intake sheet candidate.
func (r *IntakeRepository) Sheet() (storage.Sheet, error) {
	for _, name := range IntakeSheetNames {
		sheet, err := r.store.Sheet(name)
		if err == nil {
			return sheet, nil
		}
	}
	return nil, fmt.Errorf("intake sheet: %w", storage.ErrSheetNotFound)
}

// EnsureSheet returns the intake sheet with a usable header row, creating
// the sheet when the store has none yet. A pre-created empty tab gets the
// default headers too.
func (r *IntakeRepository) EnsureSheet() (storage.Sheet, error) {
	sheet, err := r.Sheet()
	if err != nil {
		sheet, err = r.store.EnsureSheet(IntakeSheetNames[0])
		if err != nil {
			return nil, err
		}
	}
	rows, err := sheet.ReadAllRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if err := sheet.AppendRow(defaultIntakeHeaders); err != nil {
			return nil, err
		}
	}
	return sheet, nil
}

// rawTextColumn locates the inquiry-text column: exact header first, then a
// header containing it (forms suffix "(필수)" and similar), then anything
// mentioning 문의 내용 or 견적, finally the legacy fixed position 1.
func rawTextColumn(headers []string) int {
	if idx := utils.FindHeaderIndex(headers, intakeRawTextHeader); idx != -1 {
		return idx
	}
	for i, h := range headers {
		if h != "" && containsHeader(h, intakeRawTextHeader) {
			return i
		}
	}
	for i, h := range headers {
		if h != "" && (containsHeader(h, "문의 내용") || containsHeader(h, "견적")) {
			return i
		}
	}
	return 1
}

// containsHeader compares whitespace-insensitively, like all header checks.
func containsHeader(header, fragment string) bool {
	return strings.Contains(utils.NormalizeHeader(header), utils.NormalizeHeader(fragment))
}

// ReadSubmission reads one intake row into a RawSubmission.
func (r *IntakeRepository) ReadSubmission(sheet storage.Sheet, rowIdx int) (models.RawSubmission, error) {
	rows, err := sheet.ReadAllRows()
	if err != nil {
		return models.RawSubmission{}, err
	}
	if rowIdx <= 0 || rowIdx >= len(rows) {
		return models.RawSubmission{}, fmt.Errorf("intake row %d out of range", rowIdx)
	}
	headers := rows[0]
	row := rows[rowIdx]

	cell := func(col int) string {
		if col >= 0 && col < len(row) {
			return row[col]
		}
		return ""
	}

	tsCol := utils.FindHeaderIndex(headers, "타임스탬프")
	if tsCol == -1 {
		tsCol = 0
	}
	repCol := utils.FindHeaderIndex(headers, "영업담당자")

	return models.RawSubmission{
		Timestamp:    cell(tsCol),
		RawText:      cell(rawTextColumn(headers)),
		SalesRepName: cell(repCol),
	}, nil
}

// StatusColumn returns the 처리상태 column, appending the header when the
// sheet does not have it yet.
func (r *IntakeRepository) StatusColumn(sheet storage.Sheet) (int, error) {
	headers, err := sheet.ReadHeader()
	if err != nil {
		return 0, err
	}
	if idx := utils.FindHeaderIndex(headers, intakeStatusHeader); idx != -1 {
		return idx, nil
	}
	if err := sheet.WriteCell(0, len(headers), intakeStatusHeader); err != nil {
		return 0, err
	}
	return len(headers), nil
}

// SetStatus writes the intake status of one row.
func (r *IntakeRepository) SetStatus(sheet storage.Sheet, rowIdx int, status string) error {
	col, err := r.StatusColumn(sheet)
	if err != nil {
		return err
	}
	return sheet.WriteCell(rowIdx, col, status)
}

// Append adds a submission row with status 대기 and returns the sheet plus
// the new row's index.
func (r *IntakeRepository) Append(sub models.RawSubmission) (storage.Sheet, int, error) {
	sheet, err := r.EnsureSheet()
	if err != nil {
		return nil, 0, err
	}
	rows, err := sheet.ReadAllRows()
	if err != nil {
		return nil, 0, err
	}
	headers := rows[0]

	row := make([]string, len(headers))
	place := func(col int, v string) {
		for len(row) <= col {
			row = append(row, "")
		}
		row[col] = v
	}

	tsCol := utils.FindHeaderIndex(headers, "타임스탬프")
	if tsCol == -1 {
		tsCol = 0
	}
	place(tsCol, sub.Timestamp)
	place(rawTextColumn(headers), sub.RawText)
	if repCol := utils.FindHeaderIndex(headers, "영업담당자"); repCol != -1 {
		place(repCol, sub.SalesRepName)
	}
	statusCol, err := r.StatusColumn(sheet)
	if err != nil {
		return nil, 0, err
	}
	place(statusCol, models.IntakeStatusPending)

	if err := sheet.AppendRow(row); err != nil {
		return nil, 0, err
	}
	return sheet, len(rows), nil
}

// PendingRows lists the indexes of rows with inquiry text that are not yet
// 처리완료, for the batch sweep.
func (r *IntakeRepository) PendingRows(sheet storage.Sheet) ([]int, error) {
	rows, err := sheet.ReadAllRows()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}
	headers := rows[0]
	rawCol := rawTextColumn(headers)
	statusCol := utils.FindHeaderIndex(headers, intakeStatusHeader)

	var pending []int
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		raw := ""
		if rawCol < len(row) {
			raw = row[rawCol]
		}
		status := ""
		if statusCol != -1 && statusCol < len(row) {
			status = row[statusCol]
		}
		if utils.NormalizeHeader(raw) != "" && status != models.IntakeStatusDone {
			pending = append(pending, i)
		}
	}
	return pending, nil
}
