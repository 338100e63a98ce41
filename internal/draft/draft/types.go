package draft

import (
	"github.com/google/uuid"

	"github.com/gridironlabs/draftsim/internal/models"
)

// CreateDraftRequest carries the fields needed to create a draft.
type CreateDraftRequest struct {
	ID       uuid.UUID
	Year     int
	Settings models.DraftSettings
}

// UpdateDraftSettingsRequest carries an optional settings replacement for a
// draft that has not started.
type UpdateDraftSettingsRequest struct {
	Settings *models.DraftSettings
}
