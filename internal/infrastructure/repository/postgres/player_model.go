package postgres

import "time"

type playerTableModel struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Team         string    `db:"team"`
	Position     string    `db:"position"`
	ImageURL     string    `db:"image_url"`
	Rank         int       `db:"rank"`
	InjuryStatus string    `db:"injury_status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type playerUpsertModel struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Team         string    `db:"team"`
	Position     string    `db:"position"`
	ImageURL     string    `db:"image_url"`
	Rank         int       `db:"rank"`
	InjuryStatus string    `db:"injury_status"`
	UpdatedAt    time.Time `db:"updated_at"`
}
