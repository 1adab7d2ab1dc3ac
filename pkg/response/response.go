package response

// Response is the JSON error/success envelope used by middleware and any
// handler that does not go through fres.
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func Success(message string, data any) Response {
	return Response{
		Code:    "OK",
		Message: message,
		Data:    data,
	}
}

func Error(code, message string, data any) Response {
	return Response{
		Code:    code,
		Message: message,
		Data:    data,
	}
}
