package postgres

import "time"

type squadTableModel struct {
	ID            int64      `db:"id"`
	PublicID      string     `db:"public_id"`
	UserID        string     `db:"user_id"`
	Gameweek      int        `db:"gameweek"`
	CaptainID     string     `db:"captain_public_id"`
	ViceCaptainID string     `db:"vice_captain_public_id"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

type squadInsertModel struct {
	PublicID      string    `db:"public_id"`
	UserID        string    `db:"user_id"`
	Gameweek      int       `db:"gameweek"`
	CaptainID     string    `db:"captain_public_id"`
	ViceCaptainID string    `db:"vice_captain_public_id"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type squadMemberTableModel struct {
	ID        int64      `db:"id"`
	SquadID   string     `db:"squad_public_id"`
	AthleteID string     `db:"athlete_public_id"`
	IsStarter bool       `db:"is_starter"`
	Slot      int        `db:"slot"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type squadMemberInsertModel struct {
	SquadID   string `db:"squad_public_id"`
	AthleteID string `db:"athlete_public_id"`
	IsStarter bool   `db:"is_starter"`
	Slot      int    `db:"slot"`
}
