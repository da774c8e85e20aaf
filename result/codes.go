package result

import "strconv"

// ErrorCode is a native result code. Zero and positive values indicate
// success; negative values identify a failure.
type ErrorCode int32

const (
	OK                                  ErrorCode = 0
	ErrUnknown                          ErrorCode = -1
	ErrObjectStillUsed                  ErrorCode = -2
	ErrBadAlloc                         ErrorCode = -3
	ErrInvalidParam                     ErrorCode = -4
	ErrInvalidHandle                    ErrorCode = -5
	ErrWrongObjectType                  ErrorCode = -6
	ErrCanceled                         ErrorCode = -7
	ErrBusy                             ErrorCode = -8
	ErrTimeout                          ErrorCode = -9
	ErrTimerExpired                     ErrorCode = -10
	ErrBufferTooSmall                   ErrorCode = -11
	ErrOpenSocketFailed                 ErrorCode = -12
	ErrBindSocketFailed                 ErrorCode = -13
	ErrListenSocketFailed               ErrorCode = -14
	ErrSetSocketOptionFailed            ErrorCode = -15
	ErrInvalidRegex                     ErrorCode = -16
	ErrReadFileFailed                   ErrorCode = -17
	ErrRWSocketFailed                   ErrorCode = -18
	ErrConnectSocketFailed              ErrorCode = -19
	ErrInvalidMagicPrefix               ErrorCode = -20
	ErrIncompatibleVersion              ErrorCode = -21
	ErrDeserializeMsgFailed             ErrorCode = -22
	ErrAcceptSocketFailed               ErrorCode = -23
	ErrLoopbackConnection               ErrorCode = -24
	ErrPasswordMismatch                 ErrorCode = -25
	ErrNetNameMismatch                  ErrorCode = -26
	ErrDuplicateBranchName              ErrorCode = -27
	ErrDuplicateBranchPath              ErrorCode = -28
	ErrPayloadTooLarge                  ErrorCode = -29
	ErrParsingCmdlineFailed             ErrorCode = -30
	ErrParsingJSONFailed                ErrorCode = -31
	ErrParsingFileFailed                ErrorCode = -32
	ErrConfigNotValid                   ErrorCode = -33
	ErrHelpRequested                    ErrorCode = -34
	ErrWriteFileFailed                  ErrorCode = -35
	ErrUndefinedVariables               ErrorCode = -36
	ErrNoVariableSupport                ErrorCode = -37
	ErrVariableUsedInKey                ErrorCode = -38
	ErrInvalidTimeFormat                ErrorCode = -39
	ErrParsingTimeFailed                ErrorCode = -40
	ErrTxQueueFull                      ErrorCode = -41
	ErrInvalidOperationID               ErrorCode = -42
	ErrOperationNotRunning              ErrorCode = -43
	ErrInvalidUserMsgpack               ErrorCode = -44
	ErrJoinMulticastGroupFailed         ErrorCode = -45
	ErrEnumerateNetworkInterfacesFailed ErrorCode = -46
	ErrConfigurationSectionNotFound     ErrorCode = -47
	ErrConfigurationValidationFailed    ErrorCode = -48
	ErrWorkerAlreadyAdded               ErrorCode = -49
	ErrOpenFileFailed                   ErrorCode = -50
)

var descriptions = [...]string{
	"Success",
	"Unknown internal error occured",
	"The object is still being used by another object",
	"Insufficient memory to complete the operation",
	"Invalid parameter",
	"Invalid Handle",
	"Object is of the wrong type",
	"The operation has been canceled",
	"Operation failed because the object is busy",
	"The operation timed out",
	"The timer has not been started or already expired",
	"The supplied buffer is too small",
	"Could not open a socket",
	"Could not bind a socket",
	"Could not listen on socket",
	"Could not set a socket option",
	"Invalid regular expression",
	"Could not read from file",
	"Could not read from or write to socket",
	"Could not connect a socket",
	"The magic prefix sent when establishing a connection is wrong",
	"The Yogi versions are not compatible",
	"Could not deserialize a message",
	"Could not accept a socket",
	"Attempting to connect branch to itself",
	"The passwords of the local and remote branch do not match",
	"The net names of the local and remote branch do not match",
	"A branch with the same name is already active",
	"A branch with the same path is already active",
	"Message payload is too large",
	"Parsing the command line failed",
	"Parsing a JSON string failed",
	"Parsing a configuration file failed",
	"The configuration is not valid",
	"Help/usage text requested",
	"Could not write to file",
	"One or more configuration variables are undefined or could not be resolved",
	"Support for configuration variables has been disabled",
	"A configuration variable has been used in a key",
	"Invalid time format",
	"Could not parse time string",
	"A send queue for a remote branch is full",
	"Invalid operation ID",
	"Operation is not running",
	"User-supplied data is not valid MessagePack",
	"Joining UDP multicast group failed",
	"Enumerating network interfaces failed",
	"The section could not be found in the configuration",
	"Validating the configuration failed",
	"The context has already been added as a worker",
	"Could not open file",
}

const invalidCode = "Invalid error code"

// Description returns the human-readable text for the code.
// Positive codes are successes and share the OK description.
func (c ErrorCode) Description() string {
	if c > 0 {
		return descriptions[0]
	}
	idx := -int(c)
	if idx >= len(descriptions) {
		return invalidCode
	}
	return descriptions[idx]
}

// Known reports whether c is part of the catalog.
func (c ErrorCode) Known() bool {
	return c >= ErrOpenFileFailed
}

// Error implements the error interface so a code can be matched with errors.Is.
func (c ErrorCode) Error() string {
	return c.Description()
}

// String returns the description followed by the numeric value.
func (c ErrorCode) String() string {
	return c.Description() + " (" + strconv.Itoa(int(c)) + ")"
}

// Codes returns every catalogued failure code in descending order.
func Codes() []ErrorCode {
	codes := make([]ErrorCode, 0, len(descriptions)-1)
	for c := ErrUnknown; c >= ErrOpenFileFailed; c-- {
		codes = append(codes, c)
	}
	return codes
}
