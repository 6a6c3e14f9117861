package repository

const (
	listActiveClipsQuery = `SELECT id, title, video_url, keywords, category, is_active, created_at
					FROM educational_library
					WHERE is_active = true
					ORDER BY id`
)
