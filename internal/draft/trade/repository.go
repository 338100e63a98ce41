package trade

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/draft/pick"
	"github.com/gridironlabs/draftsim/internal/models"
	"github.com/gridironlabs/draftsim/internal/sqlutil"
)

// Repository persists pick trades and their per-pick details in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db: db,
	}
}

const tradeColumns = "id, session_id, from_team_id, to_team_id, status, from_team_value, to_team_value, value_difference, proposed_at, responded_at"

// CreateTrade persists a proposal and its per-pick details. The involved
// picks are row-locked and re-checked for open trades inside the transaction,
// so two concurrent proposals naming the same pick cannot both commit.
func (r *Repository) CreateTrade(ctx context.Context, trade models.PickTrade, details []models.PickTradeDetail) error {
	pickIDs := make([]uuid.UUID, len(details))
	for i, d := range details {
		pickIDs[i] = d.PickID
	}
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		// Serialize proposals touching the same picks.
		if _, err := tx.ExecContext(ctx,
			"SELECT id FROM draft_picks WHERE id = ANY($1) FOR UPDATE",
			pq.Array(pickIDs)); err != nil {
			return apperrors.Internal("failed to lock picks", err)
		}

		var busyPick uuid.UUID
		err := tx.QueryRowContext(ctx, `
			SELECT d.pick_id
			FROM pick_trade_details d
			JOIN pick_trades t ON t.id = d.trade_id
			WHERE d.pick_id = ANY($1) AND t.status = $2
			LIMIT 1`, pq.Array(pickIDs), models.TradeStatusProposed).Scan(&busyPick)
		if err == nil {
			return apperrors.InvalidState("pick %s is already in an open trade", busyPick)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return apperrors.Internal("failed to check open trades", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO pick_trades (id, session_id, from_team_id, to_team_id, status, from_team_value, to_team_value, value_difference, proposed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			trade.ID, trade.SessionID, trade.FromTeamID, trade.ToTeamID, trade.Status,
			trade.FromTeamValue, trade.ToTeamValue, trade.ValueDifference, trade.ProposedAt)
		if err != nil {
			return apperrors.Internal("failed to insert trade", err)
		}
		for _, d := range details {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO pick_trade_details (id, trade_id, pick_id, direction, pick_value)
				VALUES ($1, $2, $3, $4, $5)`,
				d.ID, d.TradeID, d.PickID, d.Direction, d.PickValue)
			if err != nil {
				return apperrors.Internal("failed to insert trade detail", err)
			}
		}
		return nil
	})
}

func (r *Repository) GetTrade(ctx context.Context, id uuid.UUID) (*models.PickTrade, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+tradeColumns+" FROM pick_trades WHERE id = $1", id)
	trade, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("trade %s not found", id)
		}
		return nil, apperrors.Internal("failed to get trade", err)
	}
	return trade, nil
}

func (r *Repository) GetTradeDetails(ctx context.Context, tradeID uuid.UUID) ([]models.PickTradeDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, trade_id, pick_id, direction, pick_value
		FROM pick_trade_details
		WHERE trade_id = $1
		ORDER BY pick_value DESC`, tradeID)
	if err != nil {
		return nil, apperrors.Internal("failed to query trade details", err)
	}
	defer rows.Close()

	var details []models.PickTradeDetail
	for rows.Next() {
		var d models.PickTradeDetail
		if err := rows.Scan(&d.ID, &d.TradeID, &d.PickID, &d.Direction, &d.PickValue); err != nil {
			return nil, apperrors.Internal("failed to scan trade detail", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("failed to iterate trade details", err)
	}
	return details, nil
}

// FindPendingForTeam returns PROPOSED trades addressed to the team. A
// proposal is pending for its recipient only, never for its proposer.
func (r *Repository) FindPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]models.PickTrade, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+tradeColumns+`
		FROM pick_trades
		WHERE to_team_id = $1 AND status = $2
		ORDER BY proposed_at`, teamID, models.TradeStatusProposed)
	if err != nil {
		return nil, apperrors.Internal("failed to query pending trades", err)
	}
	defer rows.Close()

	var trades []models.PickTrade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, apperrors.Internal("failed to scan trade", err)
		}
		trades = append(trades, *trade)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("failed to iterate trades", err)
	}
	return trades, nil
}

// IsPickInActiveTrade reports whether the pick appears in any PROPOSED trade.
func (r *Repository) IsPickInActiveTrade(ctx context.Context, pickID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM pick_trade_details d
			JOIN pick_trades t ON t.id = d.trade_id
			WHERE d.pick_id = $1 AND t.status = $2
		)`, pickID, models.TradeStatusProposed).Scan(&exists)
	if err != nil {
		return false, apperrors.Internal("failed to check open trades", err)
	}
	return exists, nil
}

// SettleTrade applies all pick ownership transfers and flips the trade from
// PROPOSED to ACCEPTED, in one transaction. Any transfer whose pick is no
// longer owned-and-available rolls the whole thing back, leaving the trade
// PROPOSED.
func (r *Repository) SettleTrade(ctx context.Context, tradeID uuid.UUID, transfers []PickTransfer, respondedAt time.Time) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE pick_trades
			SET status = $2, responded_at = $3
			WHERE id = $1 AND status = $4`,
			tradeID, models.TradeStatusAccepted, respondedAt, models.TradeStatusProposed)
		if err != nil {
			return apperrors.Internal("failed to update trade status", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return apperrors.Internal("failed to get rows affected count", err)
		}
		if rows == 0 {
			return apperrors.InvalidState("trade %s is no longer open", tradeID)
		}

		for _, t := range transfers {
			if err := pick.UpdatePickOwner(ctx, tx, t.PickID, t.FromTeamID, t.ToTeamID); err != nil {
				return err
			}
		}
		return nil
	})
}

// RejectTrade flips a PROPOSED trade to REJECTED and returns the closed row.
func (r *Repository) RejectTrade(ctx context.Context, tradeID uuid.UUID, respondedAt time.Time) (*models.PickTrade, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE pick_trades
		SET status = $2, responded_at = $3
		WHERE id = $1 AND status = $4
		RETURNING `+tradeColumns,
		tradeID, models.TradeStatusRejected, respondedAt, models.TradeStatusProposed)
	trade, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			existing, getErr := r.GetTrade(ctx, tradeID)
			if getErr != nil {
				return nil, getErr
			}
			return nil, apperrors.InvalidState("trade %s is %s, only PROPOSED trades can be rejected", tradeID, existing.Status)
		}
		return nil, apperrors.Internal("failed to reject trade", err)
	}
	return trade, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (*models.PickTrade, error) {
	var trade models.PickTrade
	err := s.Scan(
		&trade.ID,
		&trade.SessionID,
		&trade.FromTeamID,
		&trade.ToTeamID,
		&trade.Status,
		&trade.FromTeamValue,
		&trade.ToTeamValue,
		&trade.ValueDifference,
		&trade.ProposedAt,
		&trade.RespondedAt,
	)
	if err != nil {
		return nil, err
	}
	return &trade, nil
}
