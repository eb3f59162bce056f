package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/thetactl/thetactl"
	"github.com/thetactl/thetactl/configfile"
	"github.com/thetactl/thetactl/settings"
	"github.com/thetactl/thetactl/terminal"
)

// errSystem indicates an unexpected internal failure.
var errSystem = errors.New("system error")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func startHandler(c *gin.Context) {
	m := currentSupervisor(c)
	if m == nil {
		return
	}

	err := m.Start()

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "Running"})
	case errors.Is(err, thetactl.ErrProcessExists):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"err": "terminal already running"})
	case errors.Is(err, thetactl.ErrNoExecutable):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"err": "no terminal jar configured"})
	case errors.Is(err, thetactl.ErrCredentialsUnavailable):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"err": "no stored credentials"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"err": "failed to start terminal"})
	}
}

func stopHandler(c *gin.Context) {
	m := currentSupervisor(c)
	if m == nil {
		return
	}

	m.Stop()
	c.JSON(http.StatusOK, gin.H{"status": "Idle"})
}

func resetHandler(c *gin.Context) {
	m := currentSupervisor(c)
	if m == nil {
		return
	}

	err := m.Reset()

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "Running"})
	case errors.Is(err, thetactl.ErrNoExecutable):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"err": "no terminal jar configured"})
	case errors.Is(err, thetactl.ErrCredentialsUnavailable):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"err": "no stored credentials"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"err": "failed to start terminal"})
	}
}

func statusHandler(c *gin.Context) {
	m := currentSupervisor(c)
	if m == nil {
		return
	}

	status := gin.H{"status": "Idle"}

	// Pid takes a single snapshot of the process state; a nonzero pid
	// means a terminal was running at that instant. Asking Running()
	// separately could see the process exit between the two calls.
	if pid := m.Pid(); pid != 0 {
		status["status"] = "Running"
		status["pid"] = pid
	}

	if path, ok := m.DetectedConfigPath(); ok {
		status["config_path"] = path
	}

	c.JSON(http.StatusOK, status)
}

func logHandler(c *gin.Context) {
	m := currentSupervisor(c)
	if m == nil {
		return
	}

	c.String(http.StatusOK, m.Log())
}

// apiHandler exposes everything beyond the bare process lifecycle:
// websocket streaming, credential management, and the terminal's own
// config file.
type apiHandler struct {
	manager *terminal.Manager
	clients *thetactl.ClientManager
	vault   thetactl.SecretStore
	poller  *poller
}

// echo records a host-side event in the console log and mirrors it to
// connected clients.
func (h *apiHandler) echo(line string) {
	h.manager.Append(line)
	h.clients.BroadcastLine(line)
}

func (h *apiHandler) webSocketHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	h.clients.AddClient(conn)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// showCredentialsHandler reports whether credentials are saved. The
// password never leaves the vault.
func (h *apiHandler) showCredentialsHandler(c *gin.Context) {
	username, err := h.vault.Get(terminal.ServiceName, terminal.AccountUsername)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"saved": false})
		return
	}

	if _, err := h.vault.Get(terminal.ServiceName, terminal.AccountPassword); err != nil {
		c.JSON(http.StatusOK, gin.H{"saved": false, "username": username})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": true, "username": username})
}

func (h *apiHandler) saveCredentialsHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	if err := h.vault.Set(terminal.ServiceName, terminal.AccountUsername, req.Username); err != nil {
		h.echo("Failed to save credentials.")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"err": "failed to save credentials"})
		return
	}

	if err := h.vault.Set(terminal.ServiceName, terminal.AccountPassword, req.Password); err != nil {
		h.echo("Failed to save credentials.")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"err": "failed to save credentials"})
		return
	}

	h.echo("Credentials saved.")
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// removeCredentialsHandler clears stored credentials. Vault failures are
// swallowed; the entries are gone from the caller's perspective either way.
func (h *apiHandler) removeCredentialsHandler(c *gin.Context) {
	h.vault.Delete(terminal.ServiceName, terminal.AccountUsername)
	h.vault.Delete(terminal.ServiceName, terminal.AccountPassword)

	h.echo("Credentials removed.")
	c.JSON(http.StatusOK, gin.H{"saved": false})
}

// configFilePath resolves the config file to operate on: an explicit
// query param wins, then the path the terminal reported, then the one
// remembered in settings.
func (h *apiHandler) configFilePath(c *gin.Context) string {
	if path := c.Query("path"); path != "" {
		return path
	}
	if path, ok := h.manager.DetectedConfigPath(); ok {
		return path
	}
	return h.poller.settings().ConfigPath
}

func (h *apiHandler) showConfigFileHandler(c *gin.Context) {
	path := h.configFilePath(c)
	if path == "" {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"err": "no config file path set"})
		return
	}

	contents, err := configfile.Read(path)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"err": "unable to read config file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": path, "contents": contents})
}

type configFileRequest struct {
	Path     string `json:"path"`
	Contents string `json:"contents"`
}

func (h *apiHandler) saveConfigFileHandler(c *gin.Context) {
	var req configFileRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	path := req.Path
	if path == "" {
		path = h.configFilePath(c)
	}

	if path == "" {
		h.echo("No config file path set.")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"err": "no config file path set"})
		return
	}

	if err := configfile.Write(path, req.Contents); err != nil {
		h.echo(fmt.Sprintf("Failed to write config file: %v", err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"err": "unable to write config file"})
		return
	}

	h.echo("Config file saved.")
	c.JSON(http.StatusOK, gin.H{"path": path})
}

func (h *apiHandler) showSettingsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.poller.settings())
}

func (h *apiHandler) saveSettingsHandler(c *gin.Context) {
	var req settings.Settings
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	h.poller.updateSettings(func(s *settings.Settings) {
		s.JarPath = req.JarPath
		s.AutoStart = req.AutoStart
		if req.DefaultTab != "" {
			s.DefaultTab = req.DefaultTab
		}
	})

	h.manager.SetJarPath(req.JarPath)

	c.JSON(http.StatusOK, h.poller.settings())
}
