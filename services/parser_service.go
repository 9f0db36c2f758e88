package services

import (
	"regexp"
	"strings"

	"github.com/deul428/logis-quotation/models"
)

// Keyword alias sets for line classification. Order inside each set matters:
// longer aliases come first so "월 사용량" wins over "사용량".
var (
	companyAliases  = []string{"업체명", "상호명", "계약업체", "발주업체", "고객사", "회사명"}
	regionAliases   = []string{"주소", "지역", "납품지", "착지", "지역(착지)", "위치"}
	supplierAliases = []string{"공급사", "매입사"}
	priceAliases    = []string{"매입단가", "매입가", "단가", "공급가", "기준단가"}
	budgetAliases   = []string{"예산", "사용금액", "금액", "월 사용금액"}
	printingAliases = []string{"인쇄", "인쇄여부"}
	categoryAliases = []string{"제품", "제품명", "상품", "품목"}
	moqAliases      = []string{"MOQ"}
	requestAliases  = []string{"기타 요청사항", "기타요청", "요청사항"}

	productAliases = []string{"상품"}
	specAliases    = []string{"규격(스펙)", "규격"}
	usageAliases   = []string{"월 사용량", "사용량(월평균)", "사용량"}
	amountAliases  = []string{"월 사용금액", "사용금액(월평균)", "사용금액"}
	noteAliases    = []string{"요청사항", "기타요청"}
)

// amountChars are stripped from extracted currency/amount values.
var amountChars = regexp.MustCompile(`[원₩,\s\p{Zs}]`)

func isAmountKeyword(keyword string) bool {
	return strings.Contains(keyword, "단가") ||
		strings.Contains(keyword, "금액") ||
		strings.Contains(keyword, "예산")
}

// ExtractValue pulls the value of the first matching keyword out of a single
// line. Each alias is tried with a half-width colon, colon+space and
// full-width colon; when none hit but the line has a colon, the left-hand
// token is compared against the aliases by equality or mutual containment.
// Amount-class keywords get currency glyphs, commas and whitespace stripped.
// Returns "" when nothing matches; never fails.
func ExtractValue(line string, keywords []string) string {
	for _, keyword := range keywords {
		for _, delim := range []string{keyword + ":", keyword + " :", keyword + "："} {
			idx := strings.Index(line, delim)
			if idx == -1 {
				continue
			}
			value := strings.TrimSpace(line[idx+len(delim):])
			if value == "" {
				return ""
			}
			if isAmountKeyword(keyword) {
				value = amountChars.ReplaceAllString(value, "")
			}
			return value
		}
	}

	if idx := strings.Index(line, ":"); idx != -1 {
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		for _, keyword := range keywords {
			if key == keyword || strings.Contains(key, keyword) || strings.Contains(keyword, key) {
				return value
			}
		}
	}
	return ""
}

// The spec normalizer is an ordered cascade: the first rule that claims the
// text wins, and looser dimension rules sit below the strict material-prefix
// rules so they cannot pre-empt them.
type specRule func(text string) (material, spec string, ok bool)

var specRules = []specRule{
	splitMaterialPrefix,
	splitTextWithDimension,
	splitTextWithGenericDimension,
	splitPureDimension,
}

var materialPrefixRes = []*regexp.Regexp{
	regexp.MustCompile(`^(PE필름|PVC필름|PP필름|PET필름|OPP필름|CPP필름)`),
	regexp.MustCompile(`^(PE|PVC|PP|PET|OPP|CPP)필름`),
	regexp.MustCompile(`^(폴리에틸렌|폴리염화비닐|폴리프로필렌)`),
}

// 박스 W450*H460*0.06MM → 박스 / W450*H460*0.06MM
var textDimensionRe = regexp.MustCompile(`(?i)^([가-힣A-Za-z\s]+)\s*(W\d+[*×xX]H?\d+[*×xX][\d.]+\w*)`)

var genericDimensionRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^([가-힣A-Za-z\s]+)\s*(W?\d+[*×xX]\d+[*×xX][\d.]+\w*)`),
	regexp.MustCompile(`(?i)^([가-힣A-Za-z\s]+)\s*(\d+[*×xX]\d+[*×xX][\d.]+\w*)`),
}

var pureDimensionRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(W?\d+[*×xX]H?\d+[*×xX][\d.]+\w*)$`),
	regexp.MustCompile(`(?i)^(\d+[*×xX]\d+[*×xX][\d.]+\w*)$`),
}

func splitMaterialPrefix(text string) (string, string, bool) {
	for _, re := range materialPrefixRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return m[1], strings.TrimSpace(text[len(m[0]):]), true
	}
	return "", "", false
}

func splitTextWithDimension(text string) (string, string, bool) {
	m := textDimensionRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

func splitTextWithGenericDimension(text string) (string, string, bool) {
	for _, re := range genericDimensionRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
		}
	}
	return "", "", false
}

func splitPureDimension(text string) (string, string, bool) {
	for _, re := range pureDimensionRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return "", m[1], true
		}
	}
	return "", "", false
}

// SplitSpec separates a raw specification string into material and
// dimension spec. Total over any input: when no rule matches, the text is
// returned untouched as the spec with an empty material.
func SplitSpec(specText string) (material, spec string) {
	if specText == "" {
		return "", ""
	}
	for _, rule := range specRules {
		if m, s, ok := rule(specText); ok {
			return m, s
		}
	}
	return "", specText
}

var (
	numberedPrefixRe   = regexp.MustCompile(`^\d+\.`)
	numberedLineRe     = regexp.MustCompile(`^(\d+)\.\s*(.+)`)
	productHeadLineRe  = regexp.MustCompile(`^상품\s*[:：]\s*(.+)$`)
	specHeadLineRe     = regexp.MustCompile(`^규격(\(스펙\))?\s*[:：]`)
	multiNumberedRe    = regexp.MustCompile(`(?m)^\d+\.`)
	multiProductHeadRe = regexp.MustCompile(`(?m)^상품\s*[:：]`)
	multiSpecHeadRe    = regexp.MustCompile(`(?m)^규격`)
)

func containsColon(s string) bool {
	return strings.Contains(s, ":") || strings.Contains(s, "：")
}

// ParseBaseRecord classifies the non-numbered lines of a message into the
// shared inquiry fields. Each line lands in exactly one category; the chain
// order is the classification priority. Request-note lines look ahead and
// absorb following numbered lines that enumerate requirements rather than
// products.
func ParseBaseRecord(text string) models.BaseRecord {
	var result models.BaseRecord
	lines := strings.Split(text, "\n")

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		// Numbered lines belong to the product splitter.
		if numberedPrefixRe.MatchString(line) {
			continue
		}

		switch {
		case containsAny(line, "업체명", "상호명", "계약업체", "발주업체", "고객사", "회사명"):
			result.Company = ExtractValue(line, companyAliases)
		case containsAny(line, "주소", "지역", "납품지", "착지", "위치"):
			result.Region = ExtractValue(line, regionAliases)
		case containsAny(line, "공급사", "매입사"):
			result.Supplier = ExtractValue(line, supplierAliases)
		case containsAny(line, "매입단가", "매입가", "단가", "공급가", "기준단가"):
			result.PurchasePrice = ExtractValue(line, priceAliases)
		case containsAny(line, "예산", "사용금액", "금액", "월 사용금액"):
			result.MonthlyAmount = ExtractValue(line, budgetAliases)
		case strings.Contains(line, "인쇄"):
			result.Printing = ExtractValue(line, printingAliases)
		case containsAny(line, "제품", "품목", "상품") && containsColon(line) && !strings.Contains(line, "/"):
			result.Product = ExtractValue(line, categoryAliases)
		case strings.Contains(line, "MOQ"):
			result.MOQ = ExtractValue(line, moqAliases)
		case strings.Contains(line, "요청사항") && containsColon(line):
			result.RequestNote = collectRequestNote(line, lines, i)
		}
	}
	return result
}

// collectRequestNote extracts the note from the triggering line, then keeps
// consuming following numbered lines that do not declare a product or spec.
// Supports messages that enumerate requirements (1. ..., 2. ...) separately
// from products.
func collectRequestNote(line string, lines []string, idx int) string {
	note := ExtractValue(line, requestAliases)
	for j := idx + 1; j < len(lines); j++ {
		next := strings.TrimSpace(lines[j])
		if next == "" {
			continue
		}
		if !numberedLineRe.MatchString(next) ||
			strings.Contains(next, "상품:") || strings.Contains(next, "규격:") {
			break
		}
		item := strings.TrimSpace(numberedPrefixRe.ReplaceAllString(next, ""))
		if note != "" {
			note += "\n"
		}
		note += item
	}
	return note
}

func containsAny(line string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

// HasMultipleProducts reports whether the message carries per-product blocks:
// any numbered line, or a standalone 상품: line followed by a 규격 line.
func HasMultipleProducts(text string) bool {
	if multiNumberedRe.MatchString(text) {
		return true
	}
	return multiProductHeadRe.MatchString(text) && multiSpecHeadRe.MatchString(text)
}

// ParseProducts splits a multi-product message into its product lines.
// Three input shapes converge here:
//
//	상품: X                          → sets the carried base product name
//	규격: .../사용량: ...             → slash segments under the carried name
//	1. 상품: X / 규격: ... / ...      → numbered block, own or carried name
//
// Records come back in input order with empty strings for unset fields.
func ParseProducts(text string) []models.ProductLine {
	var products []models.ProductLine
	currentBase := ""

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		// Standalone product declaration; emits nothing by itself.
		if productHeadLineRe.MatchString(line) && !strings.Contains(line, "/") {
			currentBase = ExtractValue(line, productAliases)
			continue
		}

		// Slash-delimited spec line under the carried product name.
		if currentBase != "" && specHeadLineRe.MatchString(line) && strings.Contains(line, "/") {
			p := models.ProductLine{ProductName: currentBase}
			parseSegments(strings.Split(line, "/"), &p, false)
			products = append(products, p)
			continue
		}

		m := numberedLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		body := strings.TrimSpace(m[2])

		// 1. 규격: 박스 W450*H460*0.06MM 사용량: ... (no slashes)
		if (strings.Contains(body, "규격:") || strings.Contains(body, "규격：")) &&
			!strings.Contains(body, "/") {
			p := models.ProductLine{ProductName: currentBase}
			p.Material, p.Spec = SplitSpec(ExtractValue(body, specAliases))
			if strings.Contains(body, "사용량") {
				p.Usage = ExtractValue(body, usageAliases)
			}
			products = append(products, p)
			continue
		}

		// 1. 상품: X / 규격: ...; the block's own 상품 segment wins over the
		// carried base name.
		if strings.Contains(body, "/") {
			p := models.ProductLine{ProductName: currentBase}
			parseSegments(strings.Split(body, "/"), &p, true)
			products = append(products, p)
		}
	}
	return products
}

// parseSegments classifies the slash-split segments of one product block by
// their leading keyword. allowName permits a 상품: segment to set the
// product name (numbered blocks only).
func parseSegments(parts []string, p *models.ProductLine, allowName bool) {
	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch {
		case allowName && (strings.Contains(part, "상품:") || strings.Contains(part, "상품：")):
			p.ProductName = ExtractValue(part, productAliases)
		case strings.Contains(part, "규격") && containsColon(part):
			p.Material, p.Spec = SplitSpec(ExtractValue(part, specAliases))
		case strings.Contains(part, "인쇄:") || strings.Contains(part, "인쇄："):
			p.Printing = ExtractValue(part, printingAliases)
		case strings.Contains(part, "사용량") && containsColon(part):
			p.Usage = ExtractValue(part, usageAliases)
		case strings.Contains(part, "사용금액") && containsColon(part):
			p.MonthlyAmount = ExtractValue(part, amountAliases)
		case strings.Contains(part, "요청사항") && containsColon(part):
			p.RequestNote = ExtractValue(part, noteAliases)
		}
	}
}

// MergeProduct overlays one product line onto the shared base record: a
// field the product supplies wins, a field it omits keeps the base value.
// The per-product request note, when present, replaces the message-level one.
func MergeProduct(base models.BaseRecord, p models.ProductLine) models.BaseRecord {
	out := base
	if p.ProductName != "" {
		out.Product = p.ProductName
	}
	if p.Spec != "" {
		out.Spec = p.Spec
	}
	if p.Material != "" {
		out.MaterialNote = p.Material
	}
	if p.Printing != "" {
		out.Printing = p.Printing
	}
	if p.Usage != "" {
		out.Usage = p.Usage
	}
	if p.MonthlyAmount != "" {
		out.MonthlyAmount = p.MonthlyAmount
	}
	if p.RequestNote != "" {
		out.RequestNote = p.RequestNote
	}
	return out
}
