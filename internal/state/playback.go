package state

import (
	"database/sql"
	"errors"
	"time"
)

func getPlayback(db *sql.DB) (*PlaybackState, error) {
	row := db.QueryRow(`
		SELECT path, position_ms, saved_at
		FROM playback_state WHERE id = 1
	`)

	var st PlaybackState
	var positionMs, savedAt int64

	err := row.Scan(&st.Path, &positionMs, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved state is valid on first run
	}
	if err != nil {
		return nil, err
	}

	st.Position = time.Duration(positionMs) * time.Millisecond
	st.SavedAt = time.Unix(savedAt, 0)

	return &st, nil
}

func savePlayback(db *sql.DB, st PlaybackState) error {
	savedAt := st.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO playback_state (id, path, position_ms, saved_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			position_ms = excluded.position_ms,
			saved_at = excluded.saved_at
	`, st.Path, st.Position.Milliseconds(), savedAt.Unix())

	return err
}
