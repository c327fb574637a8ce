package models

import (
	"database/sql"
	"time"
)

// Team is a row of the pre-existing "Team" reference table. The
// pipeline only reads it: any derived row whose team key is not in
// this set is skipped at write time.
type Team struct {
	ID        string         `db:"id"` // team abbreviation, e.g. "KC"
	Name      sql.NullString `db:"name"`
	City      sql.NullString `db:"city"`
	Abbr      sql.NullString `db:"abbr"`
	Logo      sql.NullString `db:"logo"`
	CreatedAt time.Time      `db:"createdAt"`
	UpdatedAt time.Time      `db:"updatedAt"`
}
