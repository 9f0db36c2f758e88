package models

// Response is the envelope every API endpoint returns. Status is one of
// "success", "error" (server/storage failure) or "fail" (business refusal,
// e.g. no sales email on dispatch).
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Count   int    `json:"count,omitempty"`

	// Echo fields for console writes.
	EstimateNum string `json:"estimateNum,omitempty"`
	NewAmount   string `json:"newAmount,omitempty"`
	NewMemo     string `json:"newMemo,omitempty"`
	NewStatus   string `json:"newStatus,omitempty"`
	NewManager  string `json:"newManager,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
}

func SuccessResponse(message string) Response {
	return Response{Status: "success", Message: message}
}

func ErrorResponse(message string) Response {
	return Response{Status: "error", Message: message}
}

func FailResponse(message string) Response {
	return Response{Status: "fail", Message: message}
}
