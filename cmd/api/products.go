package main

import "net/http"

func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, app.catalog.List()); err != nil {
		app.internalServerError(w, r, err)
	}
}
