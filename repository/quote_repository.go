package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/deul428/logis-quotation/storage"
	"github.com/deul428/logis-quotation/utils"
)

// ResultSheetName is the sheet holding the persisted quote records.
const ResultSheetName = "파싱결과"

// ErrEstimateNotFound is returned when no row carries the requested 견적번호.
var ErrEstimateNotFound = errors.New("estimate number not found")

// canonicalHeaders is the full column set written onto a brand-new result
// sheet, in canonical order.
var canonicalHeaders = []string{
	"견적번호", "상태", "부서(팀)", "영업담당자", "영업담당자메일",
	"견적담당자", "견적담당자메일", "요청일", "회신일", "견적 유효기간",
	"업체명", "대분류", "상품", "규격(스팩)", "영업 정보",
	"견적요청비고", "추가 정보 필요사항", "샘플 필요여부", "인쇄", "색상,도수",
	"MOQ", "사용량(월평균)", "사용금액(월평균)", "지역(착지)", "기타요청",
	"견적가(매입)", "제안규격", "MOQ2", "공급사", "수주여부",
	"원본데이터", "견적 금액", "견적담당자 비고", "메일 발송 상태",
}

// requiredHeaders is the subset repaired on sheets that predate the full
// column set. Missing ones are appended after the last existing column;
// existing columns are never reordered or removed.
var requiredHeaders = []string{
	"견적번호", "상태", "영업담당자", "영업담당자메일",
	"견적담당자", "견적담당자메일", "요청일", "업체명",
	"상품", "규격(스팩)", "견적요청비고", "인쇄",
	"사용량(월평균)", "사용금액(월평균)", "지역(착지)", "원본데이터",
	"메일 발송 상태",
}

// QuoteRepository persists and mutates quote records through the header
// schema of the result sheet. Columns are always located by header text;
// positional access stops at the storage port.
type QuoteRepository struct {
	store storage.Store
	log   *zap.Logger
}

func NewQuoteRepository(store storage.Store, log *zap.Logger) *QuoteRepository {
	return &QuoteRepository{store: store, log: log}
}

// ResultSheet returns the result sheet, creating it when absent.
func (r *QuoteRepository) ResultSheet() (storage.Sheet, error) {
	return r.store.EnsureSheet(ResultSheetName)
}

// EnsureHeaders makes the sheet's header row usable and returns it. An empty
// sheet gets the canonical header list; a populated one keeps its headers
// verbatim, with any missing required header appended as a trailing column.
func (r *QuoteRepository) EnsureHeaders(sheet storage.Sheet) ([]string, error) {
	rows, err := sheet.ReadAllRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		if err := sheet.AppendRow(canonicalHeaders); err != nil {
			return nil, err
		}
		return append([]string(nil), canonicalHeaders...), nil
	}

	headers := append([]string(nil), rows[0]...)
	for _, name := range requiredHeaders {
		if utils.FindHeaderIndex(headers, name) != -1 {
			continue
		}
		if err := sheet.WriteCell(0, len(headers), name); err != nil {
			return nil, err
		}
		headers = append(headers, name)
	}
	return headers, nil
}

// AppendRowByHeaders places each supplied field under its header's column
// and appends the result. Fields with no matching header are dropped;
// headers with no supplied value stay empty.
func (r *QuoteRepository) AppendRowByHeaders(sheet storage.Sheet, headers []string, values map[string]string) error {
	row := make([]string, len(headers))
	for field, value := range values {
		if idx := utils.FindHeaderIndex(headers, field); idx != -1 {
			row[idx] = value
		}
	}
	return sheet.AppendRow(row)
}

// GenerateEstimateNum returns max(existing numbers)+1 as a string, "1" for
// an empty sheet. Non-numeric cells are skipped. The scan and the following
// append are not covered by any lock, so two concurrent inserts can mint the
// same number; that gap is carried from the source system and documented,
// not fixed.
func (r *QuoteRepository) GenerateEstimateNum(sheet storage.Sheet, headers []string) (string, error) {
	col := utils.FindHeaderIndex(headers, "견적번호")
	if col == -1 {
		col = 0
	}
	rows, err := sheet.ReadAllRows()
	if err != nil {
		return "", err
	}
	if len(rows) < 2 {
		return "1", nil
	}
	max := 0
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(row[col]))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1), nil
}

// Insert assigns the next estimate number and appends the record. Returns
// the assigned number.
func (r *QuoteRepository) Insert(values map[string]string) (string, error) {
	sheet, err := r.ResultSheet()
	if err != nil {
		return "", err
	}
	headers, err := r.EnsureHeaders(sheet)
	if err != nil {
		return "", err
	}
	num, err := r.GenerateEstimateNum(sheet, headers)
	if err != nil {
		return "", err
	}
	values["견적번호"] = num
	if err := r.AppendRowByHeaders(sheet, headers, values); err != nil {
		return "", err
	}
	r.log.Info("quote record inserted", zap.String("estimate_num", num))
	return num, nil
}

// ReadAll returns the full grid of the result sheet, header row included.
func (r *QuoteRepository) ReadAll() ([][]string, error) {
	sheet, err := r.store.Sheet(ResultSheetName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ResultSheetName, err)
	}
	return sheet.ReadAllRows()
}

// ReadFiltered returns the header row plus every record row matching all
// given filters. Status matches exactly; company and manager match by
// containment. Empty filters pass everything.
func (r *QuoteRepository) ReadFiltered(status, company, manager string) ([][]string, error) {
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}
	headers := rows[0]
	statusCol := utils.FindHeaderIndex(headers, "상태")
	companyCol := utils.FindHeaderIndex(headers, "업체명")
	managerCol := utils.FindHeaderIndex(headers, "견적담당자")

	cell := func(row []string, col int) string {
		if col >= 0 && col < len(row) {
			return row[col]
		}
		return ""
	}

	out := [][]string{headers}
	for _, row := range rows[1:] {
		if status != "" && statusCol != -1 && cell(row, statusCol) != status {
			continue
		}
		if company != "" && companyCol != -1 && !strings.Contains(cell(row, companyCol), company) {
			continue
		}
		if manager != "" && managerCol != -1 && !strings.Contains(cell(row, managerCol), manager) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// RowRef points at one located record row and lets callers read or write
// its cells by header name.
type RowRef struct {
	sheet   storage.Sheet
	Headers []string
	Index   int // zero-based grid row
	Values  []string
}

// FindByEstimateNum scans the result sheet for the record with the given
// number.
func (r *QuoteRepository) FindByEstimateNum(estimateNum string) (*RowRef, error) {
	sheet, err := r.store.Sheet(ResultSheetName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ResultSheetName, err)
	}
	rows, err := sheet.ReadAllRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEstimateNotFound
	}
	headers := rows[0]
	col := utils.FindHeaderIndex(headers, "견적번호")
	if col == -1 {
		return nil, errors.New("견적번호 column not found")
	}
	target := strings.TrimSpace(estimateNum)
	for i := 1; i < len(rows); i++ {
		if col < len(rows[i]) && strings.TrimSpace(rows[i][col]) == target {
			return &RowRef{sheet: sheet, Headers: headers, Index: i, Values: rows[i]}, nil
		}
	}
	return nil, ErrEstimateNotFound
}

// Get returns the cell under the named header as read at lookup time.
func (ref *RowRef) Get(header string) string {
	col := utils.FindHeaderIndex(ref.Headers, header)
	if col == -1 || col >= len(ref.Values) {
		return ""
	}
	return ref.Values[col]
}

// Set writes the cell under the named header.
func (ref *RowRef) Set(header, value string) error {
	col := utils.FindHeaderIndex(ref.Headers, header)
	if col == -1 {
		return fmt.Errorf("column %q not found", header)
	}
	if err := ref.sheet.WriteCell(ref.Index, col, value); err != nil {
		return err
	}
	for len(ref.Values) <= col {
		ref.Values = append(ref.Values, "")
	}
	ref.Values[col] = value
	return nil
}

// HasColumn reports whether the sheet carries the named header.
func (ref *RowRef) HasColumn(header string) bool {
	return utils.FindHeaderIndex(ref.Headers, header) != -1
}

// ToMap returns the row keyed by header text, for readSpecific responses.
func (ref *RowRef) ToMap() map[string]string {
	out := make(map[string]string, len(ref.Headers))
	for i, h := range ref.Headers {
		if i < len(ref.Values) {
			out[h] = ref.Values[i]
		} else {
			out[h] = ""
		}
	}
	return out
}
