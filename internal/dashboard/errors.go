package dashboard

import "github.com/paperiq/dashboard/internal/models"

// Precondition messages shown when a step is triggered too early.
const (
	MsgNeedFile       = "Please upload a file first"
	MsgNeedIngestion  = "Please run ingestion first"
	MsgNeedPreprocess = "Please run preprocessing first"
	MsgSessionExpired = "Session expired, please log in again"
	MsgLoggedOut      = "Logged out successfully"
)

// PreconditionError means a step was refused before any request was sent.
type PreconditionError struct {
	Step    models.Step
	Message string
}

func (e *PreconditionError) Error() string {
	return string(e.Step) + ": " + e.Message
}
