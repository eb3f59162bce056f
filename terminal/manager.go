// Package terminal supervises the ThetaData Terminal process: it spawns
// the jar with stored credentials, fans its stdout and stderr into a
// single console log, and watches that log for the config file location
// the terminal reports at startup.
package terminal

import (
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/thetactl/thetactl"
)

var _ thetactl.Supervisor = &Manager{}

const (
	// ServiceName keys the credential vault entries for the terminal.
	ServiceName = "ThetaDataTerminal"

	// AccountUsername and AccountPassword are the vault account names.
	AccountUsername = "username"
	AccountPassword = "password"

	// restartDelay gives the OS time to release the listen port the old
	// process held before the replacement tries to bind it.
	restartDelay = time.Millisecond * 250
)

// Manager supervises a single terminal process at a time. Lifecycle
// methods may be called from any goroutine; transitions are serialized
// by a mutex. The stream readers are the only other concurrent actors,
// and they touch nothing but the line queue.
type Manager struct {
	// JarPath is the terminal jar launched on Start. Set it before the
	// first Start, or through SetJarPath afterwards.
	JarPath string

	// Command, when non-empty, replaces the derived java invocation
	// entirely. Credentials are still fetched so start preconditions
	// hold. Used by tests.
	Command []string

	// MaxSinkBytes caps retained console output. Zero keeps everything.
	MaxSinkBytes int

	store thetactl.SecretStore

	mu       sync.Mutex
	state    State
	cmd      *exec.Cmd
	exit     <-chan error
	queue    *lineQueue
	sink     logSink
	detected string
}

// NewManager returns a supervisor with no process running. Credentials
// are read from the given store on every Start, never cached.
func NewManager(store thetactl.SecretStore) *Manager {
	return &Manager{store: store}
}

// Start launches the terminal process. If a process is already running
// it is left untouched and ErrProcessExists is returned. Failures are
// also recorded as console log lines; state is unchanged by any failure.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.start()
}

func (m *Manager) start() error {
	log := log.WithField("action", "Manager.start")

	if m.state == Running {
		return fmt.Errorf("terminal already running: %w", thetactl.ErrProcessExists)
	}

	if m.JarPath == "" && len(m.Command) == 0 {
		return thetactl.ErrNoExecutable
	}

	username, uerr := m.store.Get(ServiceName, AccountUsername)
	password, perr := m.store.Get(ServiceName, AccountPassword)

	if uerr != nil || perr != nil {
		m.sink.append("No valid credentials found. Cannot start.")
		return thetactl.ErrCredentialsUnavailable
	}

	m.sink.setMax(m.MaxSinkBytes)
	m.queue = &lineQueue{}

	cmd, exit, err := startProcess(m.launchCommand(username, password), m.queue)
	if err != nil {
		log.WithError(err).Error("failed to start terminal")
		m.sink.append(fmt.Sprintf("Failed to start terminal: %v", err))
		return fmt.Errorf("spawn failed: %w", err)
	}

	m.cmd = cmd
	m.exit = exit
	m.state = Running
	m.sink.append("Terminal started.")

	log.WithField("pid", cmd.Process.Pid).Info("terminal started")
	return nil
}

// launchCommand builds the argv used to spawn the terminal. Credentials
// ride as trailing arguments; they never appear in the console log.
func (m *Manager) launchCommand(username, password string) []string {
	if len(m.Command) > 0 {
		return m.Command
	}
	return []string{javaCommand, "-jar", m.JarPath, username, password}
}

// Stop kills the running terminal and waits for it to be reaped. No-op
// when nothing is running; no misleading log line is appended.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop()
}

func (m *Manager) stop() {
	if m.state != Running {
		return
	}

	stopProcess(m.cmd, m.exit)
	m.release()
	m.sink.append("Terminal forcibly quit.")
}

// Reset stops any running terminal, then starts a fresh one after a
// short delay.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stop()
	time.Sleep(restartDelay)
	return m.start()
}

// Poll drains all pending console output, feeds it through the config
// path detector, and checks for process exit. It never blocks and is
// meant to be called on every host tick. The newly observed lines,
// including any synthesized notices, are returned in sink order.
func (m *Manager) Poll() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string

	if m.queue != nil {
		for _, line := range m.queue.drain() {
			m.sink.append(line)
			out = append(out, line)

			if path, ok := DetectConfigPath(line); ok {
				m.detected = path
				note := "Detected config file path from terminal: " + path
				m.sink.append(note)
				out = append(out, note)
			}
		}
	}

	if m.state == Running {
		select {
		case err := <-m.exit:
			if err != nil {
				log.WithField("action", "Manager.Poll").WithError(err).Debug("terminal exited with error")
			}
			m.release()
			m.sink.append("Terminal process exited.")
			out = append(out, "Terminal process exited.")
		default:
		}
	}

	return out
}

// release drops the child handle. Must be called with the lock held and
// only after the process has been reaped.
func (m *Manager) release() {
	m.cmd = nil
	m.exit = nil
	m.state = Idle
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Running returns true if a terminal process is active.
func (m *Manager) Running() bool {
	return m.State() == Running
}

// Pid returns the process id of the running terminal, or zero.
func (m *Manager) Pid() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cmd == nil {
		return 0
	}
	return m.cmd.Process.Pid
}

// DetectedConfigPath returns the config file location most recently seen
// in the terminal's output. Later sightings overwrite earlier ones.
func (m *Manager) DetectedConfigPath() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detected, m.detected != ""
}

// SetJarPath updates the jar launched by subsequent starts. A running
// process is unaffected until restarted.
func (m *Manager) SetJarPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.JarPath = path
}

// Log returns all console output accumulated so far.
func (m *Manager) Log() string {
	return m.sink.String()
}

// Append adds a line to the console log without involving the process.
func (m *Manager) Append(line string) {
	m.sink.append(line)
}

// Shutdown kills any running terminal before the host exits. Same
// sequence as Stop; a terminal must never outlive its supervisor.
func (m *Manager) Shutdown() {
	m.Stop()
}
