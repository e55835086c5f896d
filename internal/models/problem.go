package models

type ProblemListItem struct {
	ID           int    `db:"id" json:"id"`
	Title        string `db:"title" json:"title"`
	Difficulty   string `db:"difficulty" json:"difficulty"`
	Category     string `db:"category" json:"category"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
}

type ProblemDetail struct {
	ID           int    `db:"id" json:"id"`
	Title        string `db:"title" json:"title"`
	Difficulty   string `db:"difficulty" json:"difficulty"`
	Category     string `db:"category" json:"category"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
	Description  string `db:"description" json:"description"`
}

// TestCase holds one input/expected-output pair. Cases are graded in
// position order and outputs are compared after trimming surrounding
// whitespace only.
type TestCase struct {
	ID             int    `db:"id" json:"id"`
	Input          string `db:"input" json:"input"`
	ExpectedOutput string `db:"expected_output" json:"expected_output"`
}
