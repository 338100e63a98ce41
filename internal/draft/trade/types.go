package trade

import (
	"github.com/google/uuid"
)

// ProposeTradeRequest offers a set of the proposer's picks for a set of the
// recipient's picks.
type ProposeTradeRequest struct {
	SessionID   uuid.UUID
	FromTeamID  uuid.UUID
	ToTeamID    uuid.UUID
	FromPickIDs []uuid.UUID
	ToPickIDs   []uuid.UUID
}

// PickTransfer is one ownership reassignment inside a settlement. FromTeamID
// is the owner the pick must still have for the settlement to apply.
type PickTransfer struct {
	PickID     uuid.UUID
	FromTeamID uuid.UUID
	ToTeamID   uuid.UUID
}
