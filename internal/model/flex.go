package model

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
)

// FlexString - внешний идентификатор, который источник присылает
// то строкой, то числом. Отсутствующее значение и null дают NULL в БД.
type FlexString struct {
	sql.NullString
}

// Text создает заполненное значение FlexString.
func Text(s string) FlexString {
	return FlexString{sql.NullString{String: s, Valid: true}}
}

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		f.NullString = sql.NullString{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.NullString = sql.NullString{String: s, Valid: true}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("ожидалась строка или число, получено %s", string(data))
	}
	f.NullString = sql.NullString{String: n.String(), Valid: true}
	return nil
}

func (f FlexString) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.String)
}
