package terminal

import (
	"strings"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thetactl/thetactl"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// newTestManager returns a manager whose launch command is overridden and
// whose secret store already holds credentials.
func newTestManager(t *testing.T, command ...string) *Manager {
	t.Helper()

	store := &thetactl.MemoryStore{}
	require.NoError(t, store.Set(ServiceName, AccountUsername, "user"))
	require.NoError(t, store.Set(ServiceName, AccountPassword, "pass"))

	m := NewManager(store)
	m.Command = command
	return m
}

func TestManagerLifecycle(t *testing.T) {
	t.Run("start spawns a process", func(t *testing.T) {
		m := newTestManager(t, "sleep", "60")
		defer m.Stop()

		require.NoError(t, m.Start())

		assert.True(t, m.Running())
		assert.NotZero(t, m.Pid())
		assert.Contains(t, m.Log(), "Terminal started.")
	})

	t.Run("start while running leaves the process untouched", func(t *testing.T) {
		m := newTestManager(t, "sleep", "60")
		defer m.Stop()

		require.NoError(t, m.Start())
		pid := m.Pid()

		err := m.Start()

		assert.ErrorIs(t, err, thetactl.ErrProcessExists)
		assert.Equal(t, pid, m.Pid())
		assert.Equal(t, 1, strings.Count(m.Log(), "Terminal started."))
	})

	t.Run("stop kills the process", func(t *testing.T) {
		m := newTestManager(t, "sleep", "60")
		require.NoError(t, m.Start())

		m.Stop()

		assert.False(t, m.Running())
		assert.Zero(t, m.Pid())
		assert.Contains(t, m.Log(), "Terminal forcibly quit.")
	})

	t.Run("stop while idle is silent", func(t *testing.T) {
		m := newTestManager(t, "sleep", "60")

		m.Stop()

		assert.Equal(t, "", m.Log())
	})

	t.Run("shutdown kills a running process", func(t *testing.T) {
		m := newTestManager(t, "sleep", "60")
		require.NoError(t, m.Start())

		m.Shutdown()

		assert.False(t, m.Running())
	})
}

func TestManagerStartFailures(t *testing.T) {
	t.Run("no jar configured", func(t *testing.T) {
		m := newTestManager(t)

		assert.ErrorIs(t, m.Start(), thetactl.ErrNoExecutable)
		assert.False(t, m.Running())
	})

	t.Run("missing credentials", func(t *testing.T) {
		m := NewManager(&thetactl.MemoryStore{})
		m.Command = []string{"sleep", "60"}

		assert.ErrorIs(t, m.Start(), thetactl.ErrCredentialsUnavailable)
		assert.False(t, m.Running())
		assert.Contains(t, m.Log(), "No valid credentials found. Cannot start.")
	})

	t.Run("spawn failure", func(t *testing.T) {
		m := newTestManager(t, "/no/such/binary")

		assert.Error(t, m.Start())
		assert.False(t, m.Running())
		assert.Contains(t, m.Log(), "Failed to start terminal:")
	})
}

func TestManagerPoll(t *testing.T) {
	t.Run("drains output from both streams", func(t *testing.T) {
		m := newTestManager(t, "sh", "-c", "echo out-line; echo err-line 1>&2; sleep 30")
		defer m.Stop()

		require.NoError(t, m.Start())

		assertAsync(t, func() bool {
			m.Poll()
			output := m.Log()
			return strings.Contains(output, "out-line") && strings.Contains(output, "err-line")
		})
	})

	t.Run("detects the reported config path", func(t *testing.T) {
		m := newTestManager(t, "sh", "-c", "echo 'Using /tmp/theta.conf as the config file'; sleep 30")
		defer m.Stop()

		require.NoError(t, m.Start())

		assertAsync(t, func() bool {
			m.Poll()
			path, ok := m.DetectedConfigPath()
			return ok && path == "/tmp/theta.conf"
		})

		assert.Contains(t, m.Log(), "Detected config file path from terminal: /tmp/theta.conf")
	})

	t.Run("later sightings overwrite earlier ones", func(t *testing.T) {
		m := newTestManager(t,
			"sh", "-c",
			"echo 'Using /tmp/first.conf as the config file'; echo 'Using /tmp/second.conf as the config file'; sleep 30",
		)
		defer m.Stop()

		require.NoError(t, m.Start())

		assertAsync(t, func() bool {
			m.Poll()
			path, ok := m.DetectedConfigPath()
			return ok && path == "/tmp/second.conf"
		})
	})

	t.Run("exit is reported exactly once", func(t *testing.T) {
		m := newTestManager(t, "sh", "-c", "exit 0")
		require.NoError(t, m.Start())

		assertAsync(t, func() bool {
			m.Poll()
			return !m.Running()
		})

		for i := 0; i < 5; i++ {
			m.Poll()
		}

		assert.Equal(t, 1, strings.Count(m.Log(), "Terminal process exited."))
		assert.Zero(t, m.Pid())
	})
}

func TestManagerReset(t *testing.T) {
	t.Run("reset replaces the process", func(t *testing.T) {
		m := newTestManager(t, "sleep", "60")
		defer m.Stop()

		require.NoError(t, m.Start())
		pid := m.Pid()

		require.NoError(t, m.Reset())

		assert.True(t, m.Running())
		assert.NotEqual(t, pid, m.Pid())
	})

	t.Run("reset from idle starts fresh", func(t *testing.T) {
		m := newTestManager(t, "sleep", "60")
		defer m.Stop()

		require.NoError(t, m.Reset())
		assert.True(t, m.Running())
	})

	t.Run("reset surfaces spawn failure", func(t *testing.T) {
		m := newTestManager(t, "/no/such/binary")

		assert.Error(t, m.Reset())
		assert.False(t, m.Running())
		assert.Contains(t, m.Log(), "Failed to start terminal:")
	})
}

func assertAsync(t *testing.T, testFunc func() bool, msgs ...string) {
	const (
		timeout = time.Second * 3
		tick    = time.Millisecond * 10
	)
	assert.Eventually(t, testFunc, timeout, tick, msgs)
}
