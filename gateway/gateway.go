package gateway

import (
	"gorm.io/gorm"

	"weather-server/db"
)

// Gateway runs builder output against the database. Every call other than
// InsertMany is a single auto-committed statement. Errors from the store are
// returned as they come, with no retry.
type Gateway struct {
	db db.Database
}

func New(database db.Database) *Gateway {
	return &Gateway{db: database}
}

// FetchOne scans the first row matching filter into dest, a pointer to a
// struct. It reports false when nothing matched. No ORDER BY is applied, so
// when several rows match the store decides which one comes first.
func (g *Gateway) FetchOne(table Table, filter Filter, dest any) (bool, error) {
	sql, values, err := BuildSelect(table, filter)
	if err != nil {
		return false, err
	}

	tx := g.db.GetDB().Raw(sql, values...).Scan(dest)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// FetchMany scans every row matching filter into dest, a pointer to a
// slice. A nil filter selects the whole table. Row order is unspecified.
func (g *Gateway) FetchMany(table Table, filter Filter, dest any) error {
	sql, values, err := BuildSelect(table, filter)
	if err != nil {
		return err
	}
	return g.db.GetDB().Raw(sql, values...).Scan(dest).Error
}

// Count returns the number of rows matching filter.
func (g *Gateway) Count(table Table, filter Filter) (int64, error) {
	sql, values, err := BuildCount(table, filter)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := g.db.GetDB().Raw(sql, values...).Scan(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// InsertOne writes a single row and returns the affected row count.
func (g *Gateway) InsertOne(table Table, row map[Column]any) (int64, error) {
	sql, values, err := BuildInsert(table, row)
	if err != nil {
		return 0, err
	}

	tx := g.db.GetDB().Exec(sql, values...)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

// maxBoundValues is the most placeholders a single statement may carry.
// sqlite allows 32766, postgres 65535.
const maxBoundValues = 32766

// InsertMany writes rows as multi-row INSERTs of at most maxBoundValues
// placeholders each, all inside one transaction, so the batch commits or
// fails as a whole. An empty batch touches nothing.
func (g *Gateway) InsertMany(table Table, columns []Column, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	chunk := len(rows)
	if len(columns) > 0 {
		chunk = max(maxBoundValues/len(columns), 1)
	}

	var affected int64
	err := g.db.GetDB().Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(rows); start += chunk {
			end := min(start+chunk, len(rows))
			sql, values, err := BuildInsertMany(table, columns, rows[start:end])
			if err != nil {
				return err
			}
			res := tx.Exec(sql, values...)
			if res.Error != nil {
				return res.Error
			}
			affected += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}
