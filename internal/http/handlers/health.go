package handlers

import (
	"net/http"
)

// Health reports liveness only. Provider credentials and the database are
// optional at startup, so readiness never gates on them.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
