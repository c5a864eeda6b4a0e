package handlers

import "net/http"

// Health has no dependencies: if the process serves the request, it is ok.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
