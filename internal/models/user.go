package models

// UserStats is the per-user scoring counter. It is only ever mutated by
// atomic increments on an Accepted verdict; scores never decrease. Banned
// users keep their historical score but drop out of the official ranking.
type UserStats struct {
	UserID         int    `db:"user_id" json:"user_id"`
	Username       string `db:"username" json:"username"`
	TotalScore     int    `db:"total_score" json:"total_score"`
	ProblemsSolved int    `db:"problems_solved" json:"problems_solved"`
	IsBanned       bool   `db:"is_banned" json:"is_banned"`
}

type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	UserID         int    `json:"user_id"`
	Username       string `json:"username"`
	TotalScore     int    `json:"total_score"`
	ProblemsSolved int    `json:"problems_solved"`
}
