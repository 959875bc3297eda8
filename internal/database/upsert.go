package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

const (
	// DefaultBatchSize - сколько строк попадает в один INSERT.
	DefaultBatchSize = 1000
	// MaxBindParams - лимит параметров одного запроса в PostgreSQL.
	MaxBindParams = 65535
)

// Execer - минимум, нужный для записи. Его реализуют *sqlx.Tx и *sqlx.DB.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Row - строка таблицы с естественным (или составным) ключом.
type Row interface {
	Key() string
}

// TableSpec описывает таблицу и политику разрешения конфликтов.
type TableSpec struct {
	Table string
	// ConflictKeys - колонки уникального ограничения для ON CONFLICT.
	ConflictKeys []string
	// UpdateColumns - колонки, перезаписываемые при конфликте.
	// Остальные колонки заполняются только при вставке.
	UpdateColumns []string
}

// Upsert записывает строки в таблицу одной операцией
// INSERT ... ON CONFLICT DO UPDATE (по батчам размера batchSize).
// Возвращает число записанных строк. Пустой вход - 0 без обращения к БД.
//
// PostgreSQL не дает одному INSERT ... ON CONFLICT обновить строку дважды,
// поэтому повторы ключа схлопываются заранее: остается место первого
// вхождения и значения последнего.
func Upsert[R Row](ctx context.Context, ex Execer, spec TableSpec, rows []R, batchSize int) (int, error) {
	rows = collapse(rows)
	if len(rows) == 0 {
		return 0, nil
	}
	batchSize = chunkSize[R](batchSize)

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		query, args := buildUpsert(spec, rows[start:end])
		if _, err := ex.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("ошибка upsert в %s: %w", spec.Table, err)
		}
	}
	return len(rows), nil
}

// buildUpsert строит многострочный INSERT с ON CONFLICT для PostgreSQL.
func buildUpsert[R Row](spec TableSpec, rows []R) (string, []interface{}) {
	var proto R
	values := make([]interface{}, len(rows))
	for i := range rows {
		values[i] = rows[i]
	}

	ib := sqlbuilder.NewStruct(proto).For(sqlbuilder.PostgreSQL).InsertInto(spec.Table, values...)
	ib.SQL(onConflict(spec))
	return ib.Build()
}

// chunkSize ограничивает батч так, чтобы строки*колонки не превышали MaxBindParams.
func chunkSize[R Row](batchSize int) int {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	var proto R
	if cols := len(sqlbuilder.NewStruct(proto).Columns()); cols > 0 {
		batchSize = min(batchSize, MaxBindParams/cols)
	}
	return batchSize
}

func onConflict(spec TableSpec) string {
	sets := make([]string, len(spec.UpdateColumns))
	for i, col := range spec.UpdateColumns {
		sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
	}
	return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(spec.ConflictKeys, ", "), strings.Join(sets, ", "))
}

// collapse оставляет одну строку на ключ.
func collapse[R Row](rows []R) []R {
	index := make(map[string]int, len(rows))
	out := make([]R, 0, len(rows))
	for _, r := range rows {
		if i, ok := index[r.Key()]; ok {
			out[i] = r
			continue
		}
		index[r.Key()] = len(out)
		out = append(out, r)
	}
	return out
}
