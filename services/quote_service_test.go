package services

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/deul428/logis-quotation/models"
	"github.com/deul428/logis-quotation/repository"
	"github.com/deul428/logis-quotation/storage"
)

// fakeNotifier records notifications instead of talking to an SMTP server.
type fakeNotifier struct {
	estimatorMails []string // recipient addresses
	salesMails     []string
	failEstimator  bool
	failSales      bool
}

func (f *fakeNotifier) NotifyEstimator(manager models.ManagerInfo, salesManagerName string, rec *models.QuoteRecord) error {
	if f.failEstimator {
		return errors.New("smtp down")
	}
	f.estimatorMails = append(f.estimatorMails, manager.Email)
	return nil
}

func (f *fakeNotifier) ConfirmToSales(row *models.DispatchRow) error {
	if f.failSales {
		return errors.New("smtp down")
	}
	f.salesMails = append(f.salesMails, row.SalesManagerEmail)
	return nil
}

func newQuoteFixture(t *testing.T) (*QuoteService, *storage.MemoryStore, *fakeNotifier) {
	t.Helper()
	store := storage.NewMemoryStore()
	log := zap.NewNop()
	notifier := &fakeNotifier{}
	svc := NewQuoteService(
		repository.NewQuoteRepository(store, log),
		repository.NewIntakeRepository(store, log),
		NewManagerService(store, log),
		notifier,
		log,
	)
	return svc, store, notifier
}

func seedDirectories(store *storage.MemoryStore) {
	store.Seed(EstimatorSheetName, [][]string{
		{"상품명", "담당자", "담당자메일"},
		{"박스", "김견적", "kim@example.com"},
	})
	store.Seed(SalesSheetName, [][]string{
		{"영업담당자", "영업담당자메일"},
		{"홍길동", "hong@example.com"},
	})
}

func resultRowByNum(t *testing.T, store *storage.MemoryStore, num string) map[string]string {
	t.Helper()
	sheet, err := store.Sheet(repository.ResultSheetName)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := sheet.ReadAllRows()
	if err != nil {
		t.Fatal(err)
	}
	headers := rows[0]
	for _, row := range rows[1:] {
		if len(row) > 0 && row[0] == num {
			out := map[string]string{}
			for i, h := range headers {
				if i < len(row) {
					out[h] = row[i]
				}
			}
			return out
		}
	}
	t.Fatalf("record %s not found", num)
	return nil
}

func TestHandleSubmissionMultiProduct(t *testing.T) {
	svc, store, notifier := newQuoteFixture(t)
	seedDirectories(store)

	text := strings.Join([]string{
		"업체명: AJ",
		"지역: 서울 송파구",
		"1. 상품: 박스 / 규격: W450*H460*0.06MM / 사용량: 약 40,000장",
		"2. 상품: 테이프 / 규격: W500*H600 / 사용량: 약 20,000롤 / 사용금액: 500000 / 인쇄: 안함",
		"기타 요청사항: 납기 일정 회신 부탁드립니다.",
	}, "\n")

	nums, err := svc.HandleSubmission(models.RawSubmission{
		Timestamp:    "2026-09-01T10:00:00+09:00",
		SalesRepName: "홍길동",
		RawText:      text,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(nums) != 2 || nums[0] != "1" || nums[1] != "2" {
		t.Fatalf("nums = %v, want [1 2]", nums)
	}

	first := resultRowByNum(t, store, "1")
	if first["상품"] != "박스" || first["규격(스팩)"] != "W450*H460*0.06MM" {
		t.Errorf("first product/spec = %q/%q", first["상품"], first["규격(스팩)"])
	}
	if first["사용량(월평균)"] != "약 40,000장" {
		t.Errorf("first usage = %q", first["사용량(월평균)"])
	}
	if first["업체명"] != "AJ" || first["지역(착지)"] != "서울 송파구" {
		t.Errorf("shared fields = %q/%q", first["업체명"], first["지역(착지)"])
	}
	if first["기타요청"] != "납기 일정 회신 부탁드립니다." {
		t.Errorf("note = %q", first["기타요청"])
	}
	if first["상태"] != models.StatusPreIntake || first["메일 발송 상태"] != models.MailStatusBefore {
		t.Errorf("initial statuses = %q/%q", first["상태"], first["메일 발송 상태"])
	}
	if first["영업담당자"] != "홍길동" || first["영업담당자메일"] != "hong@example.com" {
		t.Errorf("sales fields = %q/%q", first["영업담당자"], first["영업담당자메일"])
	}
	if first["견적담당자"] != "김견적" || first["견적담당자메일"] != "kim@example.com" {
		t.Errorf("estimator fields = %q/%q", first["견적담당자"], first["견적담당자메일"])
	}
	if first["원본데이터"] != text {
		t.Errorf("original text not preserved")
	}

	second := resultRowByNum(t, store, "2")
	if second["상품"] != "테이프" || second["규격(스팩)"] != "W500*H600" {
		t.Errorf("second product/spec = %q/%q", second["상품"], second["규격(스팩)"])
	}
	if second["사용금액(월평균)"] != "500000" || second["인쇄"] != "안함" {
		t.Errorf("second amount/printing = %q/%q", second["사용금액(월평균)"], second["인쇄"])
	}
	// 테이프 has no directory entry.
	if second["견적담당자"] != models.UnassignedManager {
		t.Errorf("second estimator = %q, want 미지정", second["견적담당자"])
	}
	// Shared fields are copied to every line item.
	if second["업체명"] != "AJ" || second["기타요청"] != "납기 일정 회신 부탁드립니다." {
		t.Errorf("second shared fields = %q/%q", second["업체명"], second["기타요청"])
	}

	// Only the resolved estimator got a mail.
	if len(notifier.estimatorMails) != 1 || notifier.estimatorMails[0] != "kim@example.com" {
		t.Errorf("estimator mails = %v", notifier.estimatorMails)
	}

	// The intake row is marked done.
	intakeSheet, err := store.Sheet(repository.IntakeSheetNames[0])
	if err != nil {
		t.Fatal(err)
	}
	rows, _ := intakeSheet.ReadAllRows()
	status := rows[1][len(rows[0])-1]
	if status != models.IntakeStatusDone {
		t.Errorf("intake status = %q, want 처리완료", status)
	}
}

func TestHandleSubmissionSingleProduct(t *testing.T) {
	svc, store, _ := newQuoteFixture(t)
	seedDirectories(store)

	nums, err := svc.HandleSubmission(models.RawSubmission{
		Timestamp:    "2026-09-01T10:00:00+09:00",
		SalesRepName: "홍길동",
		RawText:      "업체명: AJ\n상품: 박스\n지역: 서울",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(nums) != 1 {
		t.Fatalf("nums = %v, want one record", nums)
	}

	rec := resultRowByNum(t, store, nums[0])
	if rec["상품"] != "박스" || rec["업체명"] != "AJ" {
		t.Errorf("record = %q/%q", rec["상품"], rec["업체명"])
	}
}

func TestHandleSubmissionEmptyText(t *testing.T) {
	svc, store, _ := newQuoteFixture(t)

	_, err := svc.HandleSubmission(models.RawSubmission{RawText: "   "})
	if !errors.Is(err, ErrEmptyInquiry) {
		t.Fatalf("err = %v, want ErrEmptyInquiry", err)
	}

	// The failed row is marked 처리오류, not removed.
	sheet, err := store.Sheet(repository.IntakeSheetNames[0])
	if err != nil {
		t.Fatal(err)
	}
	rows, _ := sheet.ReadAllRows()
	if len(rows) != 2 {
		t.Fatalf("intake rows = %d", len(rows))
	}
	found := false
	for _, cell := range rows[1] {
		if cell == models.IntakeStatusError {
			found = true
		}
	}
	if !found {
		t.Errorf("intake row lacks 처리오류: %v", rows[1])
	}
}

func TestMailFailureDoesNotRollBackRecords(t *testing.T) {
	svc, store, notifier := newQuoteFixture(t)
	seedDirectories(store)
	notifier.failEstimator = true

	nums, err := svc.HandleSubmission(models.RawSubmission{
		SalesRepName: "홍길동",
		RawText:      "업체명: AJ\n상품: 박스",
	})
	if err != nil {
		t.Fatalf("mail failure must not fail the submission: %v", err)
	}
	if len(nums) != 1 {
		t.Fatalf("nums = %v", nums)
	}
	// Record is persisted despite the failed mail.
	rec := resultRowByNum(t, store, nums[0])
	if rec["업체명"] != "AJ" {
		t.Errorf("record missing after mail failure")
	}
}

func TestProcessAllPending(t *testing.T) {
	svc, store, _ := newQuoteFixture(t)
	seedDirectories(store)

	store.Seed(repository.IntakeSheetNames[0], [][]string{
		{"타임스탬프", "견적 문의 내용", "영업담당자", "처리상태"},
		{"2026-09-01T09:00:00+09:00", "업체명: AJ\n상품: 박스", "홍길동", ""},
		{"2026-09-01T09:05:00+09:00", "업체명: BK\n상품: 박스", "홍길동", "처리완료"},
		{"2026-09-01T09:10:00+09:00", "", "홍길동", ""},
	})

	done, err := svc.ProcessAllPending()
	if err != nil {
		t.Fatal(err)
	}
	if done != 1 {
		t.Errorf("done = %d, want 1", done)
	}

	// Only the first row produced a record.
	sheet, err := store.Sheet(repository.ResultSheetName)
	if err != nil {
		t.Fatal(err)
	}
	rows, _ := sheet.ReadAllRows()
	if len(rows) != 2 {
		t.Errorf("result rows = %d, want header + 1", len(rows))
	}
}

func TestProcessAllPendingNoSheet(t *testing.T) {
	svc, _, _ := newQuoteFixture(t)
	done, err := svc.ProcessAllPending()
	if err != nil || done != 0 {
		t.Errorf("empty store sweep = (%d, %v), want (0, nil)", done, err)
	}
}

func TestUpdateEstimateAdvancesStatus(t *testing.T) {
	svc, store, _ := newQuoteFixture(t)
	seedDirectories(store)
	nums, err := svc.HandleSubmission(models.RawSubmission{
		SalesRepName: "홍길동",
		RawText:      "업체명: AJ\n상품: 박스",
	})
	if err != nil {
		t.Fatal(err)
	}
	num := nums[0]

	msg, err := svc.UpdateEstimate("cost", num, "150000", "")
	if err != nil {
		t.Fatal(err)
	}
	if msg != "견적 금액 업데이트 완료" {
		t.Errorf("message = %q", msg)
	}

	rec := resultRowByNum(t, store, num)
	if rec["견적 금액"] != "150000" {
		t.Errorf("amount = %q", rec["견적 금액"])
	}
	if rec["상태"] != models.StatusInProgress {
		t.Errorf("status = %q, want 접수진행중 after first edit", rec["상태"])
	}

	// A later edit does not regress an advanced status.
	if err := svc.UpdateStatus(num, models.StatusSent); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateEstimate("memo", num, "", "확인 완료"); err != nil {
		t.Fatal(err)
	}
	rec = resultRowByNum(t, store, num)
	if rec["상태"] != models.StatusSent {
		t.Errorf("status = %q, edits must not demote it", rec["상태"])
	}
	if rec["견적담당자 비고"] != "확인 완료" {
		t.Errorf("memo = %q", rec["견적담당자 비고"])
	}
}

func TestUpdateEstimateAll(t *testing.T) {
	svc, store, _ := newQuoteFixture(t)
	seedDirectories(store)
	nums, _ := svc.HandleSubmission(models.RawSubmission{
		SalesRepName: "홍길동",
		RawText:      "업체명: AJ\n상품: 박스",
	})

	if _, err := svc.UpdateEstimate("all", nums[0], "99000", "빠른 회신"); err != nil {
		t.Fatal(err)
	}
	rec := resultRowByNum(t, store, nums[0])
	if rec["견적 금액"] != "99000" || rec["견적담당자 비고"] != "빠른 회신" {
		t.Errorf("all update = %q/%q", rec["견적 금액"], rec["견적담당자 비고"])
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	svc, store, _ := newQuoteFixture(t)
	seedDirectories(store)
	nums, _ := svc.HandleSubmission(models.RawSubmission{
		SalesRepName: "홍길동",
		RawText:      "업체명: AJ\n상품: 박스",
	})

	if err := svc.UpdateStatus(nums[0], "이상한상태"); err == nil {
		t.Error("unknown status must be rejected")
	}
	if err := svc.UpdateStatus("99", models.StatusSent); !errors.Is(err, repository.ErrEstimateNotFound) {
		t.Errorf("err = %v, want ErrEstimateNotFound", err)
	}
	if err := svc.UpdateStatus(nums[0], "보류"); err != nil {
		t.Fatal(err)
	}
	rec := resultRowByNum(t, store, nums[0])
	if rec["상태"] != "보류" {
		t.Errorf("status = %q", rec["상태"])
	}
}

func TestUpdateManager(t *testing.T) {
	svc, store, _ := newQuoteFixture(t)
	seedDirectories(store)
	store.Seed(EstimatorSheetName, [][]string{
		{"상품명", "담당자", "담당자메일"},
		{"박스", "김견적", "kim@example.com"},
		{"봉투", "이견적", "lee@example.com"},
	})
	nums, _ := svc.HandleSubmission(models.RawSubmission{
		SalesRepName: "홍길동",
		RawText:      "업체명: AJ\n상품: 박스",
	})

	if err := svc.UpdateManager(nums[0], "이견적"); err != nil {
		t.Fatal(err)
	}
	rec := resultRowByNum(t, store, nums[0])
	if rec["견적담당자"] != "이견적" || rec["견적담당자메일"] != "lee@example.com" {
		t.Errorf("manager fields = %q/%q", rec["견적담당자"], rec["견적담당자메일"])
	}

	// A name outside the directory clears the email.
	if err := svc.UpdateManager(nums[0], "외부인"); err != nil {
		t.Fatal(err)
	}
	rec = resultRowByNum(t, store, nums[0])
	if rec["견적담당자"] != "외부인" || rec["견적담당자메일"] != "" {
		t.Errorf("unknown manager = %q/%q", rec["견적담당자"], rec["견적담당자메일"])
	}

	// Blank reassignment falls back to the sentinel.
	if err := svc.UpdateManager(nums[0], "  "); err != nil {
		t.Fatal(err)
	}
	rec = resultRowByNum(t, store, nums[0])
	if rec["견적담당자"] != models.UnassignedManager {
		t.Errorf("blank manager = %q", rec["견적담당자"])
	}
}

func TestDispatchToSalesManager(t *testing.T) {
	svc, store, notifier := newQuoteFixture(t)
	seedDirectories(store)
	nums, _ := svc.HandleSubmission(models.RawSubmission{
		SalesRepName: "홍길동",
		RawText:      "업체명: AJ\n상품: 박스",
	})

	row := &models.DispatchRow{
		EstimateNum:       nums[0],
		SalesManager:      "홍길동",
		SalesManagerEmail: "hong@example.com",
		QuoteAmount:       "150000",
	}
	recipient, err := svc.DispatchToSalesManager(row)
	if err != nil {
		t.Fatal(err)
	}
	if recipient != "hong@example.com" {
		t.Errorf("recipient = %q", recipient)
	}
	if len(notifier.salesMails) != 1 {
		t.Errorf("sales mails = %v", notifier.salesMails)
	}

	rec := resultRowByNum(t, store, nums[0])
	if rec["메일 발송 상태"] != models.MailStatusSent {
		t.Errorf("mail status = %q, want 발송 완료", rec["메일 발송 상태"])
	}
	if rec["상태"] != models.StatusSent {
		t.Errorf("status = %q, want 발송완료", rec["상태"])
	}
}

func TestDispatchRequiresSalesEmail(t *testing.T) {
	svc, _, notifier := newQuoteFixture(t)

	if _, err := svc.DispatchToSalesManager(nil); !errors.Is(err, ErrNoSalesEmail) {
		t.Errorf("nil row err = %v", err)
	}
	row := &models.DispatchRow{EstimateNum: "1", SalesManager: "홍길동"}
	if _, err := svc.DispatchToSalesManager(row); !errors.Is(err, ErrNoSalesEmail) {
		t.Errorf("empty email err = %v", err)
	}
	if len(notifier.salesMails) != 0 {
		t.Errorf("no mail may be sent without a recipient")
	}
}

func TestDispatchMailFailureKeepsStatus(t *testing.T) {
	svc, store, notifier := newQuoteFixture(t)
	seedDirectories(store)
	nums, _ := svc.HandleSubmission(models.RawSubmission{
		SalesRepName: "홍길동",
		RawText:      "업체명: AJ\n상품: 박스",
	})
	notifier.failSales = true

	row := &models.DispatchRow{
		EstimateNum:       nums[0],
		SalesManagerEmail: "hong@example.com",
	}
	if _, err := svc.DispatchToSalesManager(row); err == nil {
		t.Fatal("failed mail must surface")
	}

	// The mail status must not claim a send that never happened.
	rec := resultRowByNum(t, store, nums[0])
	if rec["메일 발송 상태"] != models.MailStatusBefore {
		t.Errorf("mail status = %q, want unchanged 발송 전", rec["메일 발송 상태"])
	}
}
