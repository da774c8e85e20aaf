package result

// Result wraps a native result code. Codes >= 0 are successes carrying the
// code as payload; negative codes are failures.
type Result struct {
	code int32
}

// ToResult converts a raw native code.
func ToResult(code int32) Result {
	return Result{code: code}
}

// Success returns a successful result with the given payload.
func Success(value int32) Result {
	if value < 0 {
		value = 0
	}
	return Result{code: value}
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.code >= 0
}

// Value returns the raw code as returned by the native call.
func (r Result) Value() int32 {
	return r.code
}

// Code returns the associated error code, OK for any success.
func (r Result) Code() ErrorCode {
	if r.code < 0 {
		return ErrorCode(r.code)
	}
	return OK
}

// Err returns nil for a success and a *Failure otherwise.
func (r Result) Err() error {
	if r.code >= 0 {
		return nil
	}
	return &Failure{Code: ErrorCode(r.code)}
}

func (r Result) String() string {
	return ErrorCode(r.code).Description()
}

// Failure is the error form of a negative result.
type Failure struct {
	Code ErrorCode
}

func (f *Failure) Error() string {
	return f.Code.Description()
}

// Unwrap exposes the code so errors.Is(err, ErrTimeout) matches.
func (f *Failure) Unwrap() error {
	return f.Code
}

// Result returns the failure as a Result value.
func (f *Failure) Result() Result {
	return Result{code: int32(f.Code)}
}

// DetailedFailure is a Failure that carries the side-channel detail string
// recorded by the native layer.
type DetailedFailure struct {
	Failure
	Details string
}

func (f *DetailedFailure) Error() string {
	return f.Code.Description() + ". Details: " + f.Details
}

// DetailSource provides the detail text for the most recent failing call.
type DetailSource interface {
	LastErrorDetails() string
}

// Check returns the payload of a successful code. For a negative code it
// returns a *DetailedFailure when src reports details and a *Failure
// otherwise.
func Check(src DetailSource, code int32) (int32, error) {
	if code >= 0 {
		return code, nil
	}
	var details string
	if src != nil {
		details = src.LastErrorDetails()
	}
	if details != "" {
		return code, &DetailedFailure{Failure: Failure{Code: ErrorCode(code)}, Details: details}
	}
	return code, &Failure{Code: ErrorCode(code)}
}

// FalseIfSpecific maps the benign code to false, any success to true and
// every other failure to the error Check would return.
func FalseIfSpecific(src DetailSource, code int32, benign ErrorCode) (bool, error) {
	if code == int32(benign) {
		return false, nil
	}
	if _, err := Check(src, code); err != nil {
		return false, err
	}
	return true, nil
}

// CodeOf extracts the error code from err. It returns OK for nil and
// ErrUnknown for errors that carry no code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return OK
	}
	for err != nil {
		switch e := err.(type) {
		case ErrorCode:
			return e
		case *Failure:
			return e.Code
		case *DetailedFailure:
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ErrUnknown
}
