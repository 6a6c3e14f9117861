package repository

const (
	getVideoByIDQuery = `SELECT id, raw_video_path, media_bucket, status, message, stitched_video_url, thumbnail_url,
					transcription_text, detected_keywords, created_at, updated_at
					FROM videos WHERE id = $1`
	ensureVideoQuery = `INSERT INTO videos (raw_video_path, media_bucket, status)
					VALUES ($1, NULLIF($2, ''), $3)
					ON CONFLICT (raw_video_path) DO UPDATE
					SET media_bucket = COALESCE(EXCLUDED.media_bucket, videos.media_bucket), updated_at = NOW()
					RETURNING id, raw_video_path, media_bucket, status, message, stitched_video_url, thumbnail_url,
					transcription_text, detected_keywords, created_at, updated_at`
	updateStatusQuery = `UPDATE videos
					SET status = $1, message = $2, updated_at = NOW()
					WHERE raw_video_path = $3`
	completeJobQuery = `UPDATE videos
					SET status = $1,
					    message = $2,
					    stitched_video_url = $3,
					    thumbnail_url = $4,
					    transcription_text = $5,
					    detected_keywords = $6,
					    updated_at = NOW()
					WHERE raw_video_path = $7`
	touchRestitchQuery = `UPDATE videos
					SET stitched_video_url = $1, thumbnail_url = $2, updated_at = NOW()
					WHERE raw_video_path = $3`
	deleteMatchesQuery = `DELETE FROM video_issue_matches
					WHERE video_id = (SELECT id FROM videos WHERE raw_video_path = $1)`
	insertMatchQuery = `INSERT INTO video_issue_matches (video_id, position, problem, category, keywords, library_id, video_url)
					SELECT id, $2, $3, NULLIF($4, ''), $5, NULLIF($6, 0), $7 FROM videos WHERE raw_video_path = $1`
	loadBlueprintQuery = `SELECT m.position,
					    COALESCE(m.override_library_id, m.library_id, 0) AS library_id,
					    COALESCE(o.video_url, l.video_url, m.video_url) AS video_url,
					    (m.override_library_id IS NOT NULL) AS overridden
					FROM video_issue_matches m
					LEFT JOIN educational_library o ON o.id = m.override_library_id
					LEFT JOIN educational_library l ON l.id = m.library_id
					WHERE m.video_id = $1
					ORDER BY m.position`
)
