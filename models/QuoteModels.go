package models

// Business status of a quote record (상태 column of 파싱결과).
const (
	StatusPreIntake  = "접수전"
	StatusInProgress = "접수진행중"
	StatusSent       = "발송완료"
)

// Intake status of a source submission row (처리상태 column of the intake sheet).
const (
	IntakeStatusPending    = "대기"
	IntakeStatusProcessing = "처리중"
	IntakeStatusDone       = "처리완료"
	IntakeStatusError      = "처리오류"
)

// Mail dispatch state (메일 발송 상태 column).
const (
	MailStatusBefore = "발송 전"
	MailStatusSent   = "발송 완료"
)

// ValidStatuses are the values the console may write through updateStatus.
// The set mirrors what the admin UI offers, including a few legacy labels.
var ValidStatuses = []string{
	"접수전", "접수 전", "접수진행중", "발송완료",
	"접수", "진행중", "완료", "보류", "취소",
}

// RawSubmission is one inbound inquiry event: a free-form message plus the
// name of the sales rep who forwarded it. Ephemeral, never persisted as-is.
type RawSubmission struct {
	Timestamp    string `json:"timestamp"`
	SalesRepName string `json:"salesRepName"`
	RawText      string `json:"rawText"`
}

// ProductLine holds the per-product fields split out of a multi-product
// inquiry block. Absent fields stay empty strings.
type ProductLine struct {
	ProductName   string `json:"productName"`   // 상품
	Spec          string `json:"spec"`          // 규격
	Material      string `json:"material"`      // 재질정보
	Usage         string `json:"usage"`         // 사용량
	MonthlyAmount string `json:"monthlyAmount"` // 사용금액
	Printing      string `json:"printing"`      // 인쇄
	RequestNote   string `json:"requestNote"`   // 개별요청사항
}

// BaseRecord carries the fields shared by every product of one inquiry,
// parsed from the non-numbered lines of the message.
type BaseRecord struct {
	Company       string `json:"company"`       // 업체명
	Region        string `json:"region"`        // 지역(착지)
	Product       string `json:"product"`       // 상품
	Category      string `json:"category"`      // 대분류
	Spec          string `json:"spec"`          // 규격(스팩)
	Usage         string `json:"usage"`         // 사용량(월평균)
	MonthlyAmount string `json:"monthlyAmount"` // 사용금액(월평균)
	MOQ           string `json:"moq"`           // MOQ
	PurchasePrice string `json:"purchasePrice"` // 견적가(매입)
	Printing      string `json:"printing"`      // 인쇄
	ColorInfo     string `json:"colorInfo"`     // 색상,도수
	Supplier      string `json:"supplier"`      // 공급사
	MaterialNote  string `json:"materialNote"`  // 견적요청비고 (재질 정보)
	RequestNote   string `json:"requestNote"`   // 기타요청
}

// ManagerInfo is the result of a directory lookup.
type ManagerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UnassignedManager is the sentinel returned when no estimator matches.
const UnassignedManager = "미지정"

// QuoteRecord is one persisted line item of 파싱결과. One record per product
// per inquiry. Records are appended on parse and mutated by the console;
// they are never deleted.
type QuoteRecord struct {
	EstimateNum       string `json:"estimateNum"`       // 견적번호
	Status            string `json:"status"`            // 상태
	Department        string `json:"department"`        // 부서(팀)
	SalesManagerName  string `json:"salesManagerName"`  // 영업담당자
	SalesManagerEmail string `json:"salesManagerEmail"` // 영업담당자메일
	ManagerName       string `json:"managerName"`       // 견적담당자
	ManagerEmail      string `json:"managerEmail"`      // 견적담당자메일
	RequestDate       string `json:"requestDate"`       // 요청일
	ReplyDate         string `json:"replyDate"`         // 회신일
	ValidUntil        string `json:"validUntil"`        // 견적 유효기간
	Company           string `json:"company"`           // 업체명
	Category          string `json:"category"`          // 대분류
	Product           string `json:"product"`           // 상품
	Spec              string `json:"spec"`              // 규격(스팩)
	RequestNote       string `json:"requestNote"`       // 견적요청비고
	ExtraInfo         string `json:"extraInfo"`         // 추가 정보 필요사항
	SampleRequired    string `json:"sampleRequired"`    // 샘플 필요여부
	Printing          string `json:"printing"`          // 인쇄
	ColorInfo         string `json:"colorInfo"`         // 색상,도수
	MOQ               string `json:"moq"`               // MOQ
	Usage             string `json:"usage"`             // 사용량(월평균)
	MonthlyAmount     string `json:"monthlyAmount"`     // 사용금액(월평균)
	Region            string `json:"region"`            // 지역(착지)
	OtherRequest      string `json:"otherRequest"`      // 기타요청
	PurchasePrice     string `json:"purchasePrice"`     // 견적가(매입)
	ProposedSpec      string `json:"proposedSpec"`      // 제안규격
	Supplier          string `json:"supplier"`          // 공급사
	OrderFlag         string `json:"orderFlag"`         // 수주여부
	OriginalText      string `json:"originalText"`      // 원본데이터
	QuoteAmount       string `json:"quoteAmount"`       // 견적 금액
	ManagerMemo       string `json:"managerMemo"`       // 견적담당자 비고
	MailStatus        string `json:"mailStatus"`        // 메일 발송 상태
}

// ValuesByHeader returns the record keyed by sheet header text, ready for a
// header-driven append. Every canonical column is present so unset fields
// land as empty cells.
func (q *QuoteRecord) ValuesByHeader() map[string]string {
	return map[string]string{
		"견적번호":       q.EstimateNum,
		"상태":         q.Status,
		"부서(팀)":      q.Department,
		"영업담당자":      q.SalesManagerName,
		"영업담당자메일":    q.SalesManagerEmail,
		"견적담당자":      q.ManagerName,
		"견적담당자메일":    q.ManagerEmail,
		"요청일":        q.RequestDate,
		"회신일":        q.ReplyDate,
		"견적 유효기간":    q.ValidUntil,
		"업체명":        q.Company,
		"대분류":        q.Category,
		"상품":         q.Product,
		"규격(스팩)":     q.Spec,
		"영업 정보":      "",
		"견적요청비고":     q.RequestNote,
		"추가 정보 필요사항": q.ExtraInfo,
		"샘플 필요여부":    q.SampleRequired,
		"인쇄":         q.Printing,
		"색상,도수":      q.ColorInfo,
		"MOQ":        q.MOQ,
		"사용량(월평균)":   q.Usage,
		"사용금액(월평균)":  q.MonthlyAmount,
		"지역(착지)":     q.Region,
		"기타요청":       q.OtherRequest,
		"견적가(매입)":    q.PurchasePrice,
		"제안규격":       q.ProposedSpec,
		"MOQ2":       "",
		"공급사":        q.Supplier,
		"수주여부":       q.OrderFlag,
		"원본데이터":      q.OriginalText,
		"견적 금액":      q.QuoteAmount,
		"견적담당자 비고":   q.ManagerMemo,
		"메일 발송 상태":   q.MailStatus,
	}
}
