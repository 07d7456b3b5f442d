package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/l1jgo/itemdb/internal/data"
)

var itemTypeColumns = []string{
	"id", "client_id", "name", "description", "editor_suffix",
	"item_group", "kind", "weight", "attack", "defense", "armor", "charges",
	"volume", "max_text_len", "rotate_to", "slot_position", "weapon_type",
	"top_order", "classification", "flags",
}

// ItemTypeRow is one persisted item definition.
type ItemTypeRow struct {
	ID       int32
	ClientID int32
	Name     string
	Group    int16
	Kind     int16
	Flags    int64
}

type ItemTypeRepo struct {
	db *DB
}

func NewItemTypeRepo(db *DB) *ItemTypeRepo {
	return &ItemTypeRepo{db: db}
}

// SaveRegistry replaces the item_types table with the registry contents
// (delete + bulk copy) in one transaction.
func (r *ItemTypeRepo) SaveRegistry(ctx context.Context, reg *data.Registry) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("item types begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM item_types`); err != nil {
		return 0, fmt.Errorf("item types clear: %w", err)
	}

	rows := make([][]any, 0, reg.Count())
	reg.Each(func(t *data.ItemType) {
		rows = append(rows, itemTypeValues(t))
	})

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"item_types"}, itemTypeColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("item types copy: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("item types commit: %w", err)
	}

	r.db.log.Info("item types saved", zap.Int64("rows", n))
	return n, nil
}

func itemTypeValues(t *data.ItemType) []any {
	return []any{
		int32(t.ID), int32(t.ClientID), t.Name, t.Description, t.EditorSuffix,
		int16(t.Group), int16(t.Kind), t.Weight, t.Attack, t.Defense, t.Armor, int64(t.Charges),
		int32(t.Volume), int32(t.MaxTextLen), int32(t.RotateTo), int32(t.SlotPosition), int16(t.WeaponType),
		int16(t.AlwaysOnTopOrder), int16(t.Classification), int64(t.FlagBits()),
	}
}

// Count returns the number of stored item definitions.
func (r *ItemTypeRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM item_types`).Scan(&n)
	return n, err
}

// LoadByClientID returns every item drawn with the given client id.
func (r *ItemTypeRepo) LoadByClientID(ctx context.Context, clientID uint16) ([]ItemTypeRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, client_id, name, item_group, kind, flags
		 FROM item_types WHERE client_id = $1 ORDER BY id`, int32(clientID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ItemTypeRow
	for rows.Next() {
		var it ItemTypeRow
		if err := rows.Scan(&it.ID, &it.ClientID, &it.Name, &it.Group, &it.Kind, &it.Flags); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}
