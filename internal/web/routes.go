package web

import "net/http"

func (c *WebController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.RequireBrowserAuth(c.handler))
	mux.HandleFunc("GET /details/{id}", c.RequireBrowserAuth(c.workflowDetailsHandler))
}
