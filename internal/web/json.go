package web

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/sweeney/paddle-keyer/internal/mqtt"
)

// maxCommandBytes bounds a /command request body.
const maxCommandBytes = 4096

// CommandResponse is the reply to POST /command.
type CommandResponse struct {
	Queued  bool   `json:"queued"`
	Command string `json:"command,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleCommand accepts the same JSON as the MQTT command topic and
// queues it for the run loop. It does not wait for the command to run.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeCommandResponse(w, http.StatusMethodNotAllowed, CommandResponse{Error: "POST only"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCommandBytes))
	if err != nil {
		writeCommandResponse(w, http.StatusBadRequest, CommandResponse{Error: err.Error()})
		return
	}

	cmd, err := mqtt.ParseCommand(body)
	if err != nil {
		writeCommandResponse(w, http.StatusBadRequest, CommandResponse{Error: err.Error()})
		return
	}

	select {
	case s.commands <- cmd:
		log.Printf("http: queued command %s from %s", cmd, r.RemoteAddr)
		writeCommandResponse(w, http.StatusAccepted, CommandResponse{Queued: true, Command: cmd.String()})
	default:
		writeCommandResponse(w, http.StatusServiceUnavailable, CommandResponse{Command: cmd.String(), Error: "command queue full"})
	}
}

func writeCommandResponse(w http.ResponseWriter, code int, resp CommandResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}
