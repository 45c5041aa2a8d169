package response

// AppError 统一错误包装，Code 为返回给客户端的错误码
type AppError struct {
	Status int
	Code   string
	Err    error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return e.Code + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(status int, code string, err error) *AppError {
	return &AppError{
		Status: status,
		Code:   code,
		Err:    err,
	}
}
