package web

import (
	"io/fs"
	"net/http"
	"strings"
)

// RegisterRoutes registers the host pages, the mailbox Stripe settings pages
// and the embedded plugin assets, served under assetPath.
func RegisterRoutes(mux *http.ServeMux, h *Handler, assetPath string) {
	prefix := strings.TrimRight(assetPath, "/") + "/"
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.MailboxIndex)
	mux.HandleFunc("GET /customers/{email}", h.CustomerProfile)
	mux.HandleFunc("GET /mailboxes/{id}", h.MailboxSettings)
	mux.HandleFunc("GET /mailboxes/{id}/stripe", h.StripeSettings)
	mux.HandleFunc("POST /mailboxes/{id}/stripe", h.SaveStripeSettings)
	mux.HandleFunc("POST /mailboxes/{id}/stripe/delete", h.DeleteStripeSettings)
}
