package models

// Settings is the process-wide runtime configuration, persisted as a small
// JSON file so a restart keeps the last admin decision.
type Settings struct {
	PauseSubmissions bool `json:"pause_submissions"`
}
