// Package models defines the payroll domain types exchanged with the backend
// and kept on the device.
package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Employee is the profile returned by the login endpoint. It is immutable for
// the lifetime of a session; a durable JSON snapshot is kept on the device.
type Employee struct {
	ID              int    `json:"EMPLEADO"`
	FirstName       string `json:"NOMBRE"`
	PaternalSurname string `json:"APPAT"`
	MaternalSurname string `json:"APMAT"`
	RFC             string `json:"RFC"`
	CURP            string `json:"CURP"`
	Category        int    `json:"TIPO"`
	Email           string `json:"EMAIL"`
}

func (e Employee) FullName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s %s", e.FirstName, e.PaternalSurname, e.MaternalSurname))
}

// Initials returns the upper-cased first letters of the first name and the
// paternal surname, or "?" when either is missing.
func (e Employee) Initials() string {
	if e.FirstName == "" || e.PaternalSurname == "" {
		return "?"
	}
	first, _ := utf8.DecodeRuneInString(e.FirstName)
	last, _ := utf8.DecodeRuneInString(e.PaternalSurname)
	return strings.ToUpper(string(first) + string(last))
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token    string   `json:"token"`
	Employee Employee `json:"empleado"`
}
