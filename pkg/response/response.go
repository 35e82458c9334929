package response

// Response is the standard API envelope.
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// ListData wraps a paginated collection.
type ListData struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Success returns a success envelope wrapping the data.
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// List returns a success envelope wrapping a paginated collection.
func List(statusCode int, items interface{}, total int64, page, limit int) Response {
	return Success(statusCode, ListData{Items: items, Total: total, Page: page, Limit: limit})
}

// Error returns an error envelope wrapping the message.
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}
