package constants

// RunStatus is the outcome stored for every document of a multi-document run.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusOK      RunStatus = "OK"
	RunStatusFailed  RunStatus = "FAILED"
	RunStatusTimeout RunStatus = "TIMEOUT" // abandoned after the per-document deadline
)
