package mock

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const progressTotal = 100

type daemon struct {
	id        string
	kind      string
	remaining int
	polls     int
	fail      bool
	source    string
}

func (s *Server) serveDaemon(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 1 && parts[0] == "startBackupDaemon" && r.Method == http.MethodPost:
		s.startDaemon(w, "BACKUP", "")
	case len(parts) == 1 && parts[0] == "startRestoreDaemon" && r.Method == http.MethodPost:
		var body struct {
			URL string `json:"url"`
		}
		if err := decodeBody(r.Body, &body); err != nil || body.URL == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}
		s.startDaemon(w, "RESTORE", body.URL)
	case len(parts) == 2 && parts[0] == "daemonStatus" && r.Method == http.MethodGet:
		s.pollDaemon(w, parts[1])
	default:
		writeError(w, http.StatusNotFound, "unknown daemon resource")
	}
}

func (s *Server) startDaemon(w http.ResponseWriter, kind, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &daemon{
		id:        uuid.NewString(),
		kind:      kind,
		remaining: s.daemonPolls,
		fail:      kind == "RESTORE" && strings.Contains(source, "missing"),
		source:    source,
	}
	s.daemons[d.id] = d
	writeJSON(w, http.StatusCreated, d.status("STARTED"))
}

func (s *Server) pollDaemon(w http.ResponseWriter, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.daemons[id]
	if !ok {
		writeError(w, http.StatusNotFound, "no daemon "+id)
		return
	}
	d.polls++
	if d.remaining > 0 {
		d.remaining--
		writeJSON(w, http.StatusOK, d.status("STARTED"))
		return
	}
	if d.fail {
		writeJSON(w, http.StatusOK, d.status("FAILED"))
		return
	}
	writeJSON(w, http.StatusOK, d.status("COMPLETED"))
}

func (d *daemon) status(state string) map[string]any {
	current := 0
	if total := d.polls + d.remaining; total > 0 {
		current = progressTotal * d.polls / total
	}
	out := map[string]any{
		"id":               d.id,
		"type":             d.kind,
		"status":           state,
		"progresssMessage": strings.ToLower(d.kind) + " " + strings.ToLower(state),
		"progresssCurrent": current,
		"progresssTotal":   progressTotal,
		"totalTimeMS":      d.polls * 1000,
	}
	switch state {
	case "COMPLETED":
		out["progresssCurrent"] = progressTotal
		if d.kind == "BACKUP" {
			out["backupUrl"] = "https://mock.synapse.local/backups/" + d.id + ".zip"
		}
	case "FAILED":
		out["errorMessage"] = "backup file not found: " + d.source
		out["errorDetails"] = "restore source " + d.source + " does not exist"
	}
	return out
}
