package models

import "time"

// ClipReference is an educational library entry.
type ClipReference struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Location  string    `json:"video_url" db:"video_url"`
	Keywords  []string  `json:"keywords" db:"-"`
	Category  string    `json:"category" db:"category"`
	Active    bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Match pairs an issue with the clip chosen for it. ClipID is zero when the
// location was synthesized from the category.
type Match struct {
	Problem  string   `json:"problem"`
	Category Category `json:"category,omitempty"`
	Keywords []string `json:"keywords"`
	ClipID   int64    `json:"library_id,omitempty"`
	Location string   `json:"video_url"`
	Title    string   `json:"title"`
}

// IsFallback reports whether the match is a generic category clip rather than a
// specific one. Fallback matches carry their category as title.
func (m Match) IsFallback() bool {
	return m.Category != "" && m.Title == string(m.Category)
}

// Resolution is the outcome of matching a job's issues. Matches holds the single
// collapsed clip (or nothing); Pairings holds every per-issue resolution.
type Resolution struct {
	Matches  []Match
	Pairings []Match
}

// BlueprintEntry is one recorded clip selection of a prior run.
type BlueprintEntry struct {
	Position   int    `json:"position" db:"position"`
	ClipID     int64  `json:"library_id" db:"library_id"`
	Location   string `json:"video_url" db:"video_url"`
	Overridden bool   `json:"overridden" db:"overridden"`
}
