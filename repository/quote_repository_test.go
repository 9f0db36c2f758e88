package repository

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/deul428/logis-quotation/storage"
	"github.com/deul428/logis-quotation/utils"
)

func newQuoteFixture(t *testing.T) (*QuoteRepository, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewQuoteRepository(store, zap.NewNop()), store
}

func TestEnsureHeadersEmptySheet(t *testing.T) {
	repo, _ := newQuoteFixture(t)
	sheet, err := repo.ResultSheet()
	if err != nil {
		t.Fatal(err)
	}

	headers, err := repo.EnsureHeaders(sheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(headers) != len(canonicalHeaders) {
		t.Fatalf("len(headers) = %d, want %d", len(headers), len(canonicalHeaders))
	}
	if headers[0] != "견적번호" || headers[1] != "상태" {
		t.Errorf("headers start with %v", headers[:2])
	}

	rows, _ := sheet.ReadAllRows()
	if len(rows) != 1 {
		t.Fatalf("sheet rows = %d, want header only", len(rows))
	}
}

func TestEnsureHeadersAppendsMissing(t *testing.T) {
	repo, store := newQuoteFixture(t)
	store.Seed(ResultSheetName, [][]string{
		{"업체명", "상품", "메모"},
		{"AJ", "박스", "기존행"},
	})
	sheet, _ := store.Sheet(ResultSheetName)

	headers, err := repo.EnsureHeaders(sheet)
	if err != nil {
		t.Fatal(err)
	}

	// Existing columns keep their positions.
	if headers[0] != "업체명" || headers[1] != "상품" || headers[2] != "메모" {
		t.Errorf("existing headers reordered: %v", headers[:3])
	}
	// Required columns are appended at the end.
	for _, name := range []string{"견적번호", "상태", "메일 발송 상태"} {
		if utils.FindHeaderIndex(headers, name) == -1 {
			t.Errorf("required header %q not appended", name)
		}
	}
	// Existing data row untouched.
	rows, _ := sheet.ReadAllRows()
	if rows[1][0] != "AJ" {
		t.Errorf("data row disturbed: %v", rows[1])
	}
}

func TestGenerateEstimateNum(t *testing.T) {
	repo, store := newQuoteFixture(t)

	store.Seed(ResultSheetName, [][]string{{"견적번호", "상태"}})
	sheet, _ := store.Sheet(ResultSheetName)
	headers, _ := sheet.ReadHeader()

	num, err := repo.GenerateEstimateNum(sheet, headers)
	if err != nil {
		t.Fatal(err)
	}
	if num != "1" {
		t.Errorf("empty sheet num = %q, want 1", num)
	}

	store.Seed(ResultSheetName, [][]string{
		{"견적번호", "상태"},
		{"1", ""},
		{"5", ""},
		{"2", ""},
		{"없음", ""},
		{"", ""},
	})
	sheet, _ = store.Sheet(ResultSheetName)
	num, err = repo.GenerateEstimateNum(sheet, headers)
	if err != nil {
		t.Fatal(err)
	}
	if num != "6" {
		t.Errorf("num = %q, want max+1 = 6", num)
	}
}

func TestAppendRowByHeadersDropsUnknownFields(t *testing.T) {
	repo, store := newQuoteFixture(t)
	store.Seed(ResultSheetName, [][]string{{"견적번호", "업체명"}})
	sheet, _ := store.Sheet(ResultSheetName)
	headers, _ := sheet.ReadHeader()

	err := repo.AppendRowByHeaders(sheet, headers, map[string]string{
		"견적번호":   "1",
		"업체명":    "AJ",
		"없는컬럼":   "버려짐",
	})
	if err != nil {
		t.Fatal(err)
	}

	rows, _ := sheet.ReadAllRows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[1][0] != "1" || rows[1][1] != "AJ" {
		t.Errorf("row = %v", rows[1])
	}
	if len(rows[1]) != len(headers) {
		t.Errorf("row width = %d, want %d", len(rows[1]), len(headers))
	}
}

func TestInsertAssignsSequentialNumbers(t *testing.T) {
	repo, _ := newQuoteFixture(t)

	first, err := repo.Insert(map[string]string{"업체명": "AJ"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := repo.Insert(map[string]string{"업체명": "BK"})
	if err != nil {
		t.Fatal(err)
	}
	if first != "1" || second != "2" {
		t.Errorf("numbers = %q, %q, want 1, 2", first, second)
	}

	ref, err := repo.FindByEstimateNum("2")
	if err != nil {
		t.Fatal(err)
	}
	if ref.Get("업체명") != "BK" {
		t.Errorf("record 2 company = %q", ref.Get("업체명"))
	}
}

func TestFindByEstimateNum(t *testing.T) {
	repo, _ := newQuoteFixture(t)
	if _, err := repo.Insert(map[string]string{"업체명": "AJ"}); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.FindByEstimateNum("99"); !errors.Is(err, ErrEstimateNotFound) {
		t.Errorf("err = %v, want ErrEstimateNotFound", err)
	}

	// Whitespace around the number is tolerated.
	ref, err := repo.FindByEstimateNum(" 1 ")
	if err != nil {
		t.Fatal(err)
	}
	if ref.Index != 1 {
		t.Errorf("Index = %d, want 1", ref.Index)
	}
}

func TestRowRefSetAndGet(t *testing.T) {
	repo, _ := newQuoteFixture(t)
	if _, err := repo.Insert(map[string]string{"업체명": "AJ"}); err != nil {
		t.Fatal(err)
	}
	ref, err := repo.FindByEstimateNum("1")
	if err != nil {
		t.Fatal(err)
	}

	if err := ref.Set("견적 금액", "150000"); err != nil {
		t.Fatal(err)
	}
	if got := ref.Get("견적 금액"); got != "150000" {
		t.Errorf("cached value = %q", got)
	}

	// Re-read through the store to confirm the write landed.
	again, err := repo.FindByEstimateNum("1")
	if err != nil {
		t.Fatal(err)
	}
	if got := again.Get("견적 금액"); got != "150000" {
		t.Errorf("persisted value = %q", got)
	}

	if err := ref.Set("존재하지 않는 컬럼", "x"); err == nil {
		t.Error("Set on unknown column must fail")
	}
}

func TestReadFiltered(t *testing.T) {
	repo, store := newQuoteFixture(t)
	store.Seed(ResultSheetName, [][]string{
		{"견적번호", "상태", "업체명", "견적담당자"},
		{"1", "접수전", "AJ물류", "김견적"},
		{"2", "접수진행중", "AJ물류", "이견적"},
		{"3", "접수전", "바른포장", "김견적"},
	})

	rows, err := repo.ReadFiltered("접수전", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 { // header + 2 matches
		t.Fatalf("status filter rows = %d, want 3", len(rows))
	}

	rows, _ = repo.ReadFiltered("", "AJ", "")
	if len(rows) != 3 {
		t.Errorf("company containment rows = %d, want 3", len(rows))
	}

	rows, _ = repo.ReadFiltered("접수전", "AJ", "김견적")
	if len(rows) != 2 || rows[1][0] != "1" {
		t.Errorf("combined filter = %v", rows)
	}

	rows, _ = repo.ReadFiltered("", "", "")
	if len(rows) != 4 {
		t.Errorf("no filter rows = %d, want all", len(rows))
	}
}
