package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/deul428/logis-quotation/models"
	"github.com/deul428/logis-quotation/utils"
)

// Notifier is what the pipeline needs from the mail layer. Both calls are
// synchronous; a failed send is reported to the caller and never undoes the
// data write that preceded it.
type Notifier interface {
	NotifyEstimator(manager models.ManagerInfo, salesManagerName string, rec *models.QuoteRecord) error
	ConfirmToSales(row *models.DispatchRow) error
}

// EmailService sends the two notification mails over SMTP. HTML bodies are
// rendered from templates; the plain-text part is derived from the HTML.
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
	log      *zap.Logger
}

func NewEmailService(log *zap.Logger) *EmailService {
	return &EmailService{
		host:     utils.Getenv("SMTP_HOST", "smtp.gmail.com"),
		port:     utils.Getenv("SMTP_PORT", "587"),
		username: os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASS"),
		from:     utils.Getenv("SMTP_FROM", os.Getenv("SMTP_USER")),
		log:      log,
	}
}

var kst = time.FixedZone("KST", 9*60*60)

// formatRequestDate renders an RFC3339 timestamp as yyyy-mm-dd hh:mm in
// Korean time. Anything unparseable passes through unchanged.
func formatRequestDate(value string) string {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return value
	}
	return t.In(kst).Format("2006-01-02 15:04")
}

var estimatorMailTmpl = template.Must(template.New("estimator").Parse(`
<html>
  <body style="font-family: 'Noto Sans KR', Pretendard, sans-serif; color: #333">
    <p style="font-size: 12px; color: #777">본 메일은 시스템에서 자동 발송되었습니다.</p>
    <p>안녕하세요, <strong>{{.ManagerName}}</strong>님.</p>
    <p>새로운 견적 요청이 접수되었습니다.</p>
    <div style="margin-top: 12px; width: 100%; font-size: 14px">
      <div style="margin-bottom: 12px; display: flex">
        <div style="width: 150px"><b>영업 담당자</b></div>
        <div style="width: 80%">{{.SalesManagerName}}</div>
      </div>
      <div style="margin-bottom: 12px; display: flex">
        <div style="width: 150px"><b>업체명</b></div>
        <div style="width: 80%">{{.Company}}</div>
      </div>
      <div style="margin-bottom: 12px; display: flex">
        <div style="width: 150px"><b>상품</b></div>
        <div style="width: 80%">{{.Product}}</div>
      </div>
      <div style="margin-bottom: 12px; display: flex">
        <div style="width: 150px"><b>규격</b></div>
        <div style="width: 80%">{{.Spec}}</div>
      </div>
      <div style="margin-bottom: 12px; display: flex">
        <div style="width: 150px"><b>사용금액(월평균)</b></div>
        <div style="width: 80%">{{.MonthlyAmount}}</div>
      </div>
      <div style="margin-bottom: 12px; display: flex">
        <div style="width: 150px"><b>요청일</b></div>
        <div style="width: 80%">{{.RequestDate}}</div>
      </div>
    </div>
    <p>자세한 내용은 로지스 견적 요청 시스템에서 확인해 주시기 바랍니다.</p>
  </body>
</html>
`))

var salesMailTmpl = template.Must(template.New("sales").Parse(`
<html>
  <body style="font-family: 'Noto Sans KR', Pretendard, sans-serif; color: #333">
    <p style="font-size: 12px; color: #777">본 메일은 시스템에서 자동 발송되었습니다.</p>
    <h2 style="color: #ef3340">신규 견적 요청 확인 안내</h2>
    <p>안녕하세요, <strong>{{.SalesManager}}</strong>님.</p>
    <p>요청하신 {{.EstimateNum}}번 견적 요청이 접수되었습니다.</p>
    <div style="margin-top: 12px; width: 100%; font-size: 14px">
      <h3 style="font-weight: bold; margin: 0">견적 요청 본문</h3>
      <div style="margin-bottom: 12px; white-space: pre-wrap">{{.RawText}}</div>
      <div style="margin-bottom: 12px">
        <h3 style="font-weight: bold; margin: 0">견적 담당자</h3>
        <div>{{.Manager}}</div>
      </div>
      <div style="margin-bottom: 12px">
        <h3 style="font-weight: bold; margin: 0">견적 요청일</h3>
        <div>{{.RequestDate}}</div>
      </div>
      <div style="margin-bottom: 12px">
        <h3 style="font-weight: bold; margin: 0">견적담당자 비고</h3>
        <div>{{.QuoteMemo}}</div>
      </div>
      <div>
        <h3 style="font-weight: bold; margin: 0">견적 금액</h3>
        <div>{{.QuoteAmount}}</div>
      </div>
    </div>
    <p style="margin-top: 16px">기타 사항은 견적 담당자에게 문의해 주십시오.</p>
  </body>
</html>
`))

// NotifyEstimator mails the assigned estimator about a freshly inserted
// record.
func (es *EmailService) NotifyEstimator(manager models.ManagerInfo, salesManagerName string, rec *models.QuoteRecord) error {
	company := rec.Company
	if company == "" {
		company = "미기입"
	}
	subject := fmt.Sprintf("신규 견적 요청 (#%s) - %s", rec.EstimateNum, company)

	data := map[string]string{
		"ManagerName":      manager.Name,
		"SalesManagerName": salesManagerName,
		"Company":          orDash(rec.Company),
		"Product":          orDash(rec.Product),
		"Spec":             orDash(rec.Spec),
		"MonthlyAmount":    orDash(rec.MonthlyAmount),
		"RequestDate":      formatRequestDate(rec.RequestDate),
	}
	var buf bytes.Buffer
	if err := estimatorMailTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render estimator mail: %w", err)
	}
	return es.Send(manager.Email, subject, htmlToText(buf.String()), buf.String())
}

// ConfirmToSales mails the sales owner that their request has been priced.
func (es *EmailService) ConfirmToSales(row *models.DispatchRow) error {
	subject := fmt.Sprintf("신규 견적 요청 접수 확인 (#%s)", row.EstimateNum)

	amount := row.QuoteAmount
	if amount != "" {
		amount = utils.FormatComma(amount) + "원"
	}
	data := map[string]string{
		"SalesManager": row.SalesManager,
		"EstimateNum":  row.EstimateNum,
		"RawText":      row.RawText,
		"Manager":      row.Manager,
		"RequestDate":  formatRequestDate(row.RequestDate),
		"QuoteMemo":    row.QuoteMemo,
		"QuoteAmount":  amount,
	}
	var buf bytes.Buffer
	if err := salesMailTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render sales mail: %w", err)
	}
	return es.Send(row.SalesManagerEmail, subject, htmlToText(buf.String()), buf.String())
}

// Send delivers one mail with a plain-text and an HTML part.
func (es *EmailService) Send(to, subject, textBody, htmlBody string) error {
	const boundary = "=_logis_alt_boundary"

	var msg strings.Builder
	msg.WriteString("From: " + es.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: multipart/alternative; boundary=\"" + boundary + "\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString("--" + boundary + "\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(textBody + "\r\n")
	msg.WriteString("--" + boundary + "\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(htmlBody + "\r\n")
	msg.WriteString("--" + boundary + "--\r\n")

	auth := smtp.PlainAuth("", es.username, es.password, es.host)
	addr := es.host + ":" + es.port
	if err := smtp.SendMail(addr, auth, es.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	es.log.Info("mail sent", zap.String("recipient", to), zap.String("subject", subject))
	return nil
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

// htmlToText flattens an HTML body into the plain-text alternative part.
func htmlToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr":
				text.WriteString("\n")
			case "td", "th":
				text.WriteString(" | ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	result := text.String()
	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(result)
}
