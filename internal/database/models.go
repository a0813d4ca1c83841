package database

import "time"

// Chunk is one indexed passage of a reference document.
type Chunk struct {
	ID        int64     `db:"id"`
	Source    string    `db:"source"`
	Index     int       `db:"chunk_index"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// SourceStat counts the passages loaded from one document.
type SourceStat struct {
	Source string `db:"source"`
	Chunks int    `db:"chunks"`
}
