package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/deul428/logis-quotation/models"
	"github.com/deul428/logis-quotation/repository"
	"github.com/deul428/logis-quotation/storage"
	"github.com/deul428/logis-quotation/utils"
)

// ErrNoSalesEmail is returned when a dispatch is requested for a row whose
// sales manager has no email on record.
var ErrNoSalesEmail = errors.New("영업 담당자 정보가 없습니다.")

// ErrEmptyInquiry is returned when a submission carries no inquiry text.
var ErrEmptyInquiry = errors.New("견적 문의 내용이 비어 있습니다.")

// QuoteService drives the whole pipeline: intake rows in, parsed quote
// records out, plus the console mutations on persisted records.
type QuoteService struct {
	quotes   *repository.QuoteRepository
	intake   *repository.IntakeRepository
	managers *ManagerService
	notifier Notifier
	log      *zap.Logger
}

func NewQuoteService(
	quotes *repository.QuoteRepository,
	intake *repository.IntakeRepository,
	managers *ManagerService,
	notifier Notifier,
	log *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quotes:   quotes,
		intake:   intake,
		managers: managers,
		notifier: notifier,
		log:      log,
	}
}

// HandleSubmission appends the submission to the intake sheet and processes
// it immediately. Returns the estimate numbers assigned to the resulting
// records.
func (s *QuoteService) HandleSubmission(sub models.RawSubmission) ([]string, error) {
	sheet, rowIdx, err := s.intake.Append(sub)
	if err != nil {
		return nil, fmt.Errorf("intake append: %w", err)
	}
	return s.ProcessIntakeRow(sheet, rowIdx)
}

// ProcessIntakeRow runs one intake row through the parser. The row's
// 처리상태 tracks the attempt: 처리중 while parsing, 처리완료 on success,
// 처리오류 on failure. A failed row stays in the sheet for the sweep to
// retry after the operator fixes it.
func (s *QuoteService) ProcessIntakeRow(sheet storage.Sheet, rowIdx int) ([]string, error) {
	if err := s.intake.SetStatus(sheet, rowIdx, models.IntakeStatusProcessing); err != nil {
		return nil, err
	}

	sub, err := s.intake.ReadSubmission(sheet, rowIdx)
	if err == nil {
		var nums []string
		nums, err = s.processRawText(sub)
		if err == nil {
			if serr := s.intake.SetStatus(sheet, rowIdx, models.IntakeStatusDone); serr != nil {
				return nums, serr
			}
			return nums, nil
		}
	}

	s.log.Error("intake row processing failed", zap.Int("row", rowIdx), zap.Error(err))
	if serr := s.intake.SetStatus(sheet, rowIdx, models.IntakeStatusError); serr != nil {
		s.log.Error("intake status write failed", zap.Int("row", rowIdx), zap.Error(serr))
	}
	return nil, err
}

// ProcessAllPending sweeps the intake sheet and processes every row that is
// not yet 처리완료. Per-row failures are recorded on the row and do not stop
// the sweep. Returns how many rows were processed successfully.
func (s *QuoteService) ProcessAllPending() (int, error) {
	sheet, err := s.intake.Sheet()
	if err != nil {
		if errors.Is(err, storage.ErrSheetNotFound) {
			return 0, nil
		}
		return 0, err
	}
	pending, err := s.intake.PendingRows(sheet)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, rowIdx := range pending {
		if _, err := s.ProcessIntakeRow(sheet, rowIdx); err == nil {
			done++
		}
	}
	if len(pending) > 0 {
		s.log.Info("intake sweep finished",
			zap.Int("pending", len(pending)), zap.Int("processed", done))
	}
	return done, nil
}

// processRawText parses one submission into quote records, one per product,
// and persists them. Notification mail failures are logged and reported but
// never roll back the inserted records.
func (s *QuoteService) processRawText(sub models.RawSubmission) ([]string, error) {
	text := strings.TrimSpace(sub.RawText)
	if text == "" {
		return nil, ErrEmptyInquiry
	}

	base := ParseBaseRecord(text)

	var merged []models.BaseRecord
	if HasMultipleProducts(text) {
		for _, p := range ParseProducts(text) {
			merged = append(merged, MergeProduct(base, p))
		}
	}
	if len(merged) == 0 {
		merged = []models.BaseRecord{base}
	}

	salesName := strings.TrimSpace(sub.SalesRepName)
	sales := s.managers.ResolveSalesManager(salesName)
	if sales.Name == "" {
		sales.Name = salesName
	}

	timestamp := strings.TrimSpace(sub.Timestamp)
	if timestamp == "" {
		timestamp = time.Now().Format(time.RFC3339)
	}

	var nums []string
	var mailErr error
	for _, rec := range merged {
		estimator := s.managers.ResolveEstimator(rec.Product)

		record := buildQuoteRecord(rec, sales, estimator, timestamp, sub.RawText)
		num, err := s.quotes.Insert(record.ValuesByHeader())
		if err != nil {
			return nums, fmt.Errorf("insert quote record: %w", err)
		}
		record.EstimateNum = num
		nums = append(nums, num)

		if estimator.Email == "" {
			s.log.Warn("no estimator email, skipping notification",
				zap.String("estimate_num", num), zap.String("product", rec.Product))
			continue
		}
		if err := s.notifier.NotifyEstimator(estimator, sales.Name, &record); err != nil {
			s.log.Error("estimator notification failed",
				zap.String("estimate_num", num), zap.Error(err))
			mailErr = err
		}
	}
	if mailErr != nil {
		// Records are in; the caller decides whether a mail failure matters.
		s.log.Warn("submission stored with notification failures", zap.Strings("estimate_nums", nums))
	}
	return nums, nil
}

func buildQuoteRecord(rec models.BaseRecord, sales, estimator models.ManagerInfo, timestamp, rawText string) models.QuoteRecord {
	return models.QuoteRecord{
		Status:            models.StatusPreIntake,
		SalesManagerName:  sales.Name,
		SalesManagerEmail: sales.Email,
		ManagerName:       estimator.Name,
		ManagerEmail:      estimator.Email,
		RequestDate:       timestamp,
		Company:           rec.Company,
		Category:          rec.Category,
		Product:           rec.Product,
		Spec:              rec.Spec,
		RequestNote:       rec.MaterialNote,
		Printing:          rec.Printing,
		ColorInfo:         rec.ColorInfo,
		MOQ:               rec.MOQ,
		Usage:             rec.Usage,
		MonthlyAmount:     rec.MonthlyAmount,
		Region:            rec.Region,
		OtherRequest:      rec.RequestNote,
		PurchasePrice:     rec.PurchasePrice,
		Supplier:          rec.Supplier,
		OriginalText:      rawText,
		MailStatus:        models.MailStatusBefore,
	}
}

// UpdateEstimate applies a console estimate edit. kind is one of cost, memo
// or all. Any successful edit advances a record still in 접수전 to 접수진행중.
func (s *QuoteService) UpdateEstimate(kind, estimateNum, newAmount, newMemo string) (string, error) {
	ref, err := s.quotes.FindByEstimateNum(estimateNum)
	if err != nil {
		return "", err
	}

	var message string
	switch kind {
	case "cost":
		if err := ref.Set("견적 금액", newAmount); err != nil {
			return "", err
		}
		message = "견적 금액 업데이트 완료"
	case "memo":
		if err := ref.Set("견적담당자 비고", newMemo); err != nil {
			return "", err
		}
		message = "견적담당자 비고 업데이트 완료"
	case "all":
		if err := ref.Set("견적 금액", newAmount); err != nil {
			return "", err
		}
		if err := ref.Set("견적담당자 비고", newMemo); err != nil {
			return "", err
		}
		message = "견적 정보 업데이트 완료"
	default:
		return "", fmt.Errorf("unknown estimate update kind: %s", kind)
	}

	if err := s.advanceStatus(ref); err != nil {
		return "", err
	}
	s.log.Info("estimate updated", zap.String("estimate_num", estimateNum), zap.String("kind", kind))
	return message, nil
}

// advanceStatus moves a record out of 접수전 once an estimator has touched
// it. Legacy rows spell the status with a space; both forms advance.
func (s *QuoteService) advanceStatus(ref *repository.RowRef) error {
	current := strings.TrimSpace(ref.Get("상태"))
	normalized := strings.ReplaceAll(current, " ", "")
	if current == "" || normalized == models.StatusPreIntake {
		return ref.Set("상태", models.StatusInProgress)
	}
	return nil
}

// UpdateStatus writes a console-chosen status onto the record.
func (s *QuoteService) UpdateStatus(estimateNum, newStatus string) error {
	valid := false
	for _, v := range models.ValidStatuses {
		if v == newStatus {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("유효하지 않은 상태 값입니다: %s", newStatus)
	}

	ref, err := s.quotes.FindByEstimateNum(estimateNum)
	if err != nil {
		return err
	}
	if err := ref.Set("상태", newStatus); err != nil {
		return err
	}
	s.log.Info("status updated", zap.String("estimate_num", estimateNum), zap.String("status", newStatus))
	return nil
}

// UpdateManager reassigns the estimator of a record. The email column is
// refreshed from the directory when the new name resolves, cleared otherwise.
func (s *QuoteService) UpdateManager(estimateNum, newManager string) error {
	ref, err := s.quotes.FindByEstimateNum(estimateNum)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(newManager)
	if name == "" {
		name = models.UnassignedManager
	}
	if err := ref.Set("견적담당자", name); err != nil {
		return err
	}

	email := ""
	if name != models.UnassignedManager {
		if info := s.lookupEstimatorByName(name); info != nil {
			email = info.Email
		}
	}
	if ref.HasColumn("견적담당자메일") {
		if err := ref.Set("견적담당자메일", email); err != nil {
			return err
		}
	}
	s.log.Info("manager updated", zap.String("estimate_num", estimateNum), zap.String("manager", name))
	return nil
}

// lookupEstimatorByName scans the estimator directory for a row whose 담당자
// column equals the given name. Nil when not found.
func (s *QuoteService) lookupEstimatorByName(name string) *models.ManagerInfo {
	sheet, err := s.managers.store.Sheet(EstimatorSheetName)
	if err != nil {
		return nil
	}
	rows, err := sheet.ReadAllRows()
	if err != nil || len(rows) < 2 {
		return nil
	}
	headers := rows[0]
	managerCol := utils.FindColumn(headers, []string{"담당자", "견적담당자"})
	if managerCol == -1 {
		managerCol = 4
	}
	emailCol := utils.FindColumn(headers, []string{"담당자메일", "담당자 메일", "이메일", "메일"})
	if emailCol == -1 {
		emailCol = 5
	}

	for _, row := range rows[1:] {
		if strings.TrimSpace(cellAt(row, managerCol)) == name {
			return &models.ManagerInfo{Name: name, Email: strings.TrimSpace(cellAt(row, emailCol))}
		}
	}
	return nil
}

// DispatchToSalesManager sends the confirmation mail for a priced record and
// flips its mail and business status. Returns the recipient address.
func (s *QuoteService) DispatchToSalesManager(row *models.DispatchRow) (string, error) {
	if row == nil || strings.TrimSpace(row.SalesManagerEmail) == "" {
		return "", ErrNoSalesEmail
	}

	ref, err := s.quotes.FindByEstimateNum(row.EstimateNum)
	if err != nil {
		return "", err
	}
	if !ref.HasColumn("메일 발송 상태") {
		return "", errors.New("메일 발송 상태 column not found")
	}

	if err := s.notifier.ConfirmToSales(row); err != nil {
		return "", fmt.Errorf("sales confirmation mail: %w", err)
	}

	if err := ref.Set("메일 발송 상태", models.MailStatusSent); err != nil {
		return "", err
	}
	if err := ref.Set("상태", models.StatusSent); err != nil {
		return "", err
	}
	s.log.Info("quote dispatched",
		zap.String("estimate_num", row.EstimateNum),
		zap.String("recipient", row.SalesManagerEmail))
	return row.SalesManagerEmail, nil
}

// ReadAll exposes the full result grid for the console.
func (s *QuoteService) ReadAll() ([][]string, error) {
	return s.quotes.ReadAll()
}

// ReadFiltered exposes the filtered result grid for the console.
func (s *QuoteService) ReadFiltered(status, company, manager string) ([][]string, error) {
	return s.quotes.ReadFiltered(status, company, manager)
}

// ReadByEstimateNum returns one record keyed by header text.
func (s *QuoteService) ReadByEstimateNum(estimateNum string) (map[string]string, error) {
	ref, err := s.quotes.FindByEstimateNum(estimateNum)
	if err != nil {
		return nil, err
	}
	return ref.ToMap(), nil
}
