package model

// ResultKind classifies a workflow outcome so the transport layer can pick a
// status code without inspecting messages.
type ResultKind int

const (
	ResultOK ResultKind = iota
	ResultInvalid
	ResultConflict
	ResultNotFound
	ResultInternal
)

// Result is the uniform envelope returned by every workflow operation.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Errors  []string    `json:"errors"`
	Data    interface{} `json:"data"`

	Kind ResultKind `json:"-"`
}

func Succeeded(message string, data interface{}) Result {
	return Result{
		Success: true,
		Message: message,
		Errors:  []string{},
		Data:    data,
		Kind:    ResultOK,
	}
}

func Failed(kind ResultKind, message string, errs ...string) Result {
	if errs == nil {
		errs = []string{}
	}
	return Result{
		Success: false,
		Message: message,
		Errors:  errs,
		Kind:    kind,
	}
}
