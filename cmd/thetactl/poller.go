package main

import (
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/thetactl/thetactl"
	"github.com/thetactl/thetactl/configfile"
	"github.com/thetactl/thetactl/settings"
)

// tickInterval is the host loop cadence. Exit detection and console
// delivery are only as timely as this value.
const tickInterval = time.Millisecond * 250

// broadcaster is the slice of ClientManager the poller needs.
type broadcaster interface {
	BroadcastLine(line string)
	BroadcastStatus(status string)
}

// poller is the host loop. Every tick it drains supervisor output to the
// websocket pool and keeps the settings file current.
type poller struct {
	manager thetactl.Supervisor
	clients broadcaster
	store   *settings.Store

	mu      sync.Mutex
	current settings.Settings
	watcher *configfile.Watcher

	lastRunning  bool
	lastDetected string

	done chan struct{}
}

func newPoller(m thetactl.Supervisor, clients broadcaster, store *settings.Store, cfg settings.Settings) *poller {
	return &poller{
		manager: m,
		clients: clients,
		store:   store,
		current: cfg,
		done:    make(chan struct{}),
	}
}

func (p *poller) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *poller) stop() {
	close(p.done)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.watcher != nil {
		p.watcher.Close()
		p.watcher = nil
	}
}

func (p *poller) tick() {
	for _, line := range p.manager.Poll() {
		p.clients.BroadcastLine(line)
	}

	if running := p.manager.Running(); running != p.lastRunning {
		p.lastRunning = running

		status := "Idle"
		if running {
			status = "Running"
		}
		p.clients.BroadcastStatus(status)
	}

	if path, ok := p.manager.DetectedConfigPath(); ok && path != p.lastDetected {
		p.lastDetected = path
		p.updateSettings(func(s *settings.Settings) { s.ConfigPath = path })
		p.watchConfigFile(path)
	}

	if err := p.store.Save(p.settings()); err != nil {
		log.WithField("action", "poller.tick").WithError(err).Warn("failed to save settings")
	}
}

func (p *poller) settings() settings.Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *poller) updateSettings(apply func(*settings.Settings)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	apply(&p.current)
}

// watchConfigFile follows the most recently detected config file so
// external edits surface in the console.
func (p *poller) watchConfigFile(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.watcher != nil {
		p.watcher.Close()
		p.watcher = nil
	}

	w, err := configfile.Watch(path, func() {
		p.manager.Append("Config file changed on disk.")
		p.clients.BroadcastLine("Config file changed on disk.")
	})

	if err != nil {
		log.WithField("action", "poller.watchConfigFile").WithError(err).Warn("unable to watch config file")
		return
	}

	p.watcher = w
}
