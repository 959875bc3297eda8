// Package input читает пакет заказов из JSON-файла.
package input

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"orders_etl/internal/model"
)

// Load читает файл с одним JSON-объектом или массивом объектов.
// Одиночный объект считается пакетом из одной записи.
func Load(path string) ([]model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения входного файла: %w", err)
	}

	records, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Parse разбирает JSON-документ в записи. Каждая запись сохраняет
// свои исходные байты (model.Record.Raw).
func Parse(data []byte) ([]model.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("пустой входной документ")
	}

	switch data[0] {
	case '{':
		var rec model.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("ошибка парсинга заказа: %w", err)
		}
		return []model.Record{rec}, nil
	case '[':
		var records []model.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("ошибка парсинга массива заказов: %w", err)
		}
		return records, nil
	default:
		return nil, fmt.Errorf("ожидался JSON-объект или массив, документ начинается с %q", data[0])
	}
}
