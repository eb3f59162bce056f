package thetactl

import "errors"

// ErrProcessExists occurs when a start is requested while a terminal
// process is already running.
var ErrProcessExists = errors.New("process already running")

// ErrNoExecutable occurs when no terminal jar has been configured.
var ErrNoExecutable = errors.New("no terminal jar configured")

// ErrCredentialsUnavailable occurs when the secret store holds no usable
// credentials at start time.
var ErrCredentialsUnavailable = errors.New("no stored credentials")

// Supervisor manages the terminal process lifecycle.
type Supervisor interface {

	// Start launches the terminal process. Credentials are fetched fresh
	// from the secret store on every call. Returns ErrProcessExists if a
	// process is already running, leaving it untouched.
	Start() error

	// Stop kills the running process and reaps it. No-op when nothing
	// is running.
	Stop()

	// Reset stops any running process, then starts a fresh one after a
	// short delay.
	Reset() error

	// Poll drains all pending console output without blocking and checks
	// whether the process has exited. Returns the newly drained lines.
	Poll() []string

	// Running returns true if a terminal process is active.
	Running() bool

	// Pid returns the process id of the running terminal, or zero.
	Pid() int

	// DetectedConfigPath returns the config file location most recently
	// reported by the terminal in its output, if any was seen.
	DetectedConfigPath() (string, bool)

	// Log returns all console output accumulated so far.
	Log() string

	// Append adds a line to the console log without involving the
	// terminal process.
	Append(line string)

	// Shutdown kills any running process before the host exits. No
	// terminal process may outlive its supervisor.
	Shutdown()
}
