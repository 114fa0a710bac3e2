package model

// ErrorResponse тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse тело ответа с текстовым сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}
