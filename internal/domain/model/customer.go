package model

import "strings"

// Customer is a helpdesk contact. Emails are ordered; the first one is the
// main email.
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Emails    []string
}

// MainEmail returns the customer's primary email, or "" when none is known.
func (c Customer) MainEmail() string {
	if len(c.Emails) == 0 {
		return ""
	}
	return c.Emails[0]
}

// FullName joins first and last name, falling back to the main email.
func (c Customer) FullName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return c.MainEmail()
	}
	return name
}
