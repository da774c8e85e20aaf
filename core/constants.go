package core

import "strings"

// BindingsVersion is the core version these bindings were written against.
const BindingsVersion = "0.1.0"

// UUIDSize is the byte length of a branch UUID buffer.
const UUIDSize = 16

// Bool values used on the wire.
const (
	False int32 = 0
	True  int32 = 1
)

// Signals is a bit set of process-local signals.
type Signals int32

const (
	SigNone Signals = 0
	SigInt  Signals = 1 << 0
	SigTerm Signals = 1 << 1
	SigUsr1 Signals = 1 << 24
	SigUsr2 Signals = 1 << 25
	SigUsr3 Signals = 1 << 26
	SigUsr4 Signals = 1 << 27
	SigUsr5 Signals = 1 << 28
	SigUsr6 Signals = 1 << 29
	SigUsr7 Signals = 1 << 30
	SigUsr8 Signals = -1 << 31

	SigAll = SigInt | SigTerm | SigUsr1 | SigUsr2 | SigUsr3 | SigUsr4 |
		SigUsr5 | SigUsr6 | SigUsr7 | SigUsr8
)

var signalNames = []struct {
	sig  Signals
	name string
}{
	{SigInt, "INT"}, {SigTerm, "TERM"},
	{SigUsr1, "USR1"}, {SigUsr2, "USR2"}, {SigUsr3, "USR3"}, {SigUsr4, "USR4"},
	{SigUsr5, "USR5"}, {SigUsr6, "USR6"}, {SigUsr7, "USR7"}, {SigUsr8, "USR8"},
}

func (s Signals) String() string {
	if s == SigNone {
		return "NONE"
	}
	var parts []string
	for _, n := range signalNames {
		if s&n.sig != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// BranchEvents is a bit set of branch event kinds.
type BranchEvents int32

const (
	BranchEventNone             BranchEvents = 0
	BranchEventDiscovered       BranchEvents = 1 << 0
	BranchEventQueried          BranchEvents = 1 << 1
	BranchEventConnectFinished  BranchEvents = 1 << 2
	BranchEventConnectionLost   BranchEvents = 1 << 3
	BranchEventAll                           = BranchEventDiscovered | BranchEventQueried | BranchEventConnectFinished | BranchEventConnectionLost
)

func (e BranchEvents) String() string {
	switch e {
	case BranchEventNone:
		return "NONE"
	case BranchEventDiscovered:
		return "BRANCH_DISCOVERED"
	case BranchEventQueried:
		return "BRANCH_QUERIED"
	case BranchEventConnectFinished:
		return "CONNECT_FINISHED"
	case BranchEventConnectionLost:
		return "CONNECTION_LOST"
	}
	return "MULTIPLE"
}

// Verbosity is a log level.
type Verbosity int32

const (
	VerbosityNone    Verbosity = -1
	VerbosityFatal   Verbosity = 0
	VerbosityError   Verbosity = 1
	VerbosityWarning Verbosity = 2
	VerbosityInfo    Verbosity = 3
	VerbosityDebug   Verbosity = 4
	VerbosityTrace   Verbosity = 5
)

var verbosityNames = [...]string{"FATAL", "ERROR", "WARNING", "INFO", "DEBUG", "TRACE"}

func (v Verbosity) String() string {
	if v == VerbosityNone {
		return "NONE"
	}
	if v < 0 || int(v) >= len(verbosityNames) {
		return "INVALID"
	}
	return verbosityNames[v]
}

// ParseVerbosity accepts the names returned by Verbosity.String,
// case-insensitively.
func ParseVerbosity(s string) (Verbosity, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "NONE" {
		return VerbosityNone, true
	}
	for i, n := range verbosityNames {
		if n == s {
			return Verbosity(i), true
		}
	}
	return VerbosityNone, false
}

// Stream selects the console output stream.
type Stream int32

const (
	StreamStdout Stream = 0
	StreamStderr Stream = 1
)

// ConfigFlags are configuration creation flags.
type ConfigFlags int32

const (
	ConfigNone             ConfigFlags = 0
	ConfigDisableVariables ConfigFlags = 1 << 0
	ConfigMutableCmdLine   ConfigFlags = 1 << 1
)
