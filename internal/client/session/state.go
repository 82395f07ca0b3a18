package session

import "github.com/dmitrijs2005/payslips/internal/client/models"

type State int

const (
	LoggedOut State = iota
	StoredLocked
	Unlocking
	Authenticated
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged-out"
	case StoredLocked:
		return "stored-locked"
	case Unlocking:
		return "unlocking"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the observable session state. The bearer token is
// never part of it.
type Snapshot struct {
	State           State
	User            *models.Employee
	IsAuthenticated bool
	IsLoading       bool
	LastError       string
}
