package handler

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{Status: StatusSuccess, Data: data}
}

func NewErrorResponse(message string) *Response {
	return &Response{Status: StatusError, Message: message}
}
