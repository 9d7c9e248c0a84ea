// Package templates holds the templ components of the Stripe module and the
// host pages that embed them. Edit the .templ files and run templ generate.
package templates
