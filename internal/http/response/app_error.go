package response

// AppError 携带 HTTP 状态码与对外消息的错误，Err 仅用于日志
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsServerError 5xx 错误需要按 error 级别记录
func (e *AppError) IsServerError() bool {
	return e != nil && e.Status >= CodeInternal
}

// WrapError 包装错误
func WrapError(status int, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Message: message,
		Err:     err,
	}
}
