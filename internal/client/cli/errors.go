package cli

import (
	"errors"

	"github.com/dmitrijs2005/payslips/internal/client/session"
	"github.com/dmitrijs2005/payslips/internal/common"
)

// userMessage is what the REPL prints for err. Backend failures use the
// shared classification; validation and local errors already read well.
func userMessage(err error) string {
	var se *common.ServerError

	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		return "please log in first"
	case errors.Is(err, common.ErrNetwork),
		errors.Is(err, common.ErrDecoding),
		errors.As(err, &se):
		return common.Describe(err)
	default:
		return err.Error()
	}
}
