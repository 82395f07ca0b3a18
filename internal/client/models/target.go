package models

import "fmt"

// Target identifies one receipt a notification asks to open. All three
// fields are required; a partial target does not exist.
type Target struct {
	EmployeeID int `json:"employeeId"`
	Period     int `json:"period"`
	Type       int `json:"type"`
}

func (t Target) String() string {
	return fmt.Sprintf("employee=%d period=%d type=%d", t.EmployeeID, t.Period, t.Type)
}

// FileName is the name a downloaded PDF for this target is saved under.
func (t Target) FileName() string {
	return fmt.Sprintf("receipt_%d_%d_%d.pdf", t.EmployeeID, t.Period, t.Type)
}
