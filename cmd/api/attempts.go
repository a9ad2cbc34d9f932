package main

import "net/http"

// listAttemptsHandler exposes the server's verification audit trail, oldest first.
func (app *application) listAttemptsHandler(w http.ResponseWriter, r *http.Request) {
	attempts, err := app.attempts.All(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, attempts); err != nil {
		app.internalServerError(w, r, err)
	}
}
