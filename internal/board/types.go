package board

// Project is a repository project board
type Project struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Body string `json:"body"`
}

// Column is a single column on a project board
type Column struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Card links a column to an issue via the issue's API URL
type Card struct {
	ID         int64  `json:"id"`
	Note       string `json:"note"`
	ContentURL string `json:"content_url"`
}

// Issue is the subset of the issues API response the engine needs.
// Pull requests surface here too: the issues endpoint serves both.
type Issue struct {
	ID     int64  `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}
