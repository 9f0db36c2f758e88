package models

// InquiryRequest is the user-mode submission payload.
type InquiryRequest struct {
	Mode         string `json:"mode"`
	RawText      string `json:"rawText" binding:"required"`
	SalesRepName string `json:"salesRepName"`
}

// ConsoleRequest is the discriminated console-mode write payload. Which
// fields matter depends on the action (updateEstimate_cost/_memo/_all,
// updateStatus, updateManager, sendToSalesManager).
type ConsoleRequest struct {
	Mode        string       `json:"mode"`
	Action      string       `json:"action" binding:"required"`
	EstimateNum string       `json:"estimateNum"`
	NewAmount   string       `json:"newAmount"`
	NewMemo     string       `json:"newMemo"`
	NewStatus   string       `json:"newStatus"`
	NewManager  string       `json:"newManager"`
	Row         *DispatchRow `json:"row"`
}

// DispatchRow is the full row object the console sends along with a
// sendToSalesManager action. Field names follow the frontend contract.
type DispatchRow struct {
	EstimateNum       string `json:"estimateNum"`
	Status            string `json:"status"`
	SalesManager      string `json:"salesManager"`
	SalesManagerEmail string `json:"salesManagerEmail"`
	Manager           string `json:"manager"`
	RequestDate       string `json:"requestDate"`
	Company           string `json:"company"`
	Product           string `json:"product"`
	Spec              string `json:"spec"`
	Region            string `json:"region"`
	RequestNote       string `json:"requestNote"`
	RawText           string `json:"rawText"`
	QuoteAmount       string `json:"quoteAmount"`
	QuoteMemo         string `json:"quoteMemo"`
	MailStatus        string `json:"mailStatus"`
}
