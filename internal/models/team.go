package models

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a franchise participating in drafts.
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"` // short abbreviation, e.g. "NE"
	CreatedAt time.Time `json:"created_at"`
}

// TeamStanding records a team's season record, used to derive draft order.
type TeamStanding struct {
	TeamID     uuid.UUID `json:"team_id"`
	SeasonYear int       `json:"season_year"`
	Wins       int       `json:"wins"`
	Losses     int       `json:"losses"`
	Ties       int       `json:"ties"`
}
