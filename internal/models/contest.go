package models

// ContestConfig is the process-wide active/frozen switch. An absent row is
// read as active so an unconfigured deployment stays available; the admin
// toggle always writes an explicit value.
type ContestConfig struct {
	IsContestActive bool `db:"is_contest_active" json:"is_contest_active"`
}
