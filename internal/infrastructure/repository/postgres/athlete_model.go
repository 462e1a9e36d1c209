package postgres

import "time"

type athleteTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	TeamID    string     `db:"team_public_id"`
	Name      string     `db:"name"`
	Position  int        `db:"position"`
	Cost      int64      `db:"cost"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type athleteInsertModel struct {
	PublicID string `db:"public_id"`
	TeamID   string `db:"team_public_id"`
	Name     string `db:"name"`
	Position int    `db:"position"`
	Cost     int64  `db:"cost"`
}
