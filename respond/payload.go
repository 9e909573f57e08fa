package respond

// Payload is the body of every error response.
//
//	{"status": false, "message": ["..."], "code": "AUTH001", "error_id": "..."}
//
// Message is flat and never empty. Code is set for application errors only,
// ErrorID for unclassified failures only.
type Payload struct {
	Status  bool        `json:"status"`
	Message []string    `json:"message"`
	Code    interface{} `json:"code,omitempty"`
	ErrorID string      `json:"error_id,omitempty"`
}

func failure(messages ...string) *Payload {
	return &Payload{
		Status:  false,
		Message: messages,
	}
}
