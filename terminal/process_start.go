package terminal

import (
	"os/exec"
	"sync"
)

// startProcess spawns the terminal, attaches a reader goroutine to each
// of its output streams, and arranges for the exit status to be delivered
// on the returned channel once the process has exited and both streams
// have been fully consumed. Reading that channel is the only way the exit
// is observed; nothing else may call Wait on the command.
func startProcess(args []string, q *lineQueue) (*exec.Cmd, <-chan error, error) {
	cmd := exec.Command(args[0], args[1:]...)
	hideWindow(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}

	// The two readers share the queue and nothing else. No ordering is
	// guaranteed between stdout and stderr lines.
	readers := sync.WaitGroup{}
	readers.Add(2)

	go func() {
		defer readers.Done()
		readStream("stdout", stdout, q)
	}()

	go func() {
		defer readers.Done()
		readStream("stderr", stderr, q)
	}()

	exit := make(chan error, 1)

	go func() {
		readers.Wait()
		exit <- cmd.Wait()
	}()

	return cmd, exit, nil
}
