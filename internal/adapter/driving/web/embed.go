package web

import "embed"

// StaticFS holds the plugin's public assets (css/stripe.css, js/stripe.js).
//
//go:embed static
var StaticFS embed.FS
