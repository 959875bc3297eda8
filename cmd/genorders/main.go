// genorders пишет JSON-файл со сгенерированными заказами для загрузчика.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"orders_etl/internal/generator"

	"github.com/spf13/cobra"
)

type genOptions struct {
	count  int
	output string
	seed   int64
}

func newRootCmd() *cobra.Command {
	var opts genOptions

	cmd := &cobra.Command{
		Use:   "genorders",
		Short: "Генерация тестового пакета заказов",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.count <= 0 {
				return fmt.Errorf("--count должен быть больше 0")
			}
			return generate(opts)
		},
	}

	cmd.Flags().IntVar(&opts.count, "count", 10, "Количество заказов")
	cmd.Flags().StringVar(&opts.output, "output", "data/orders_data.json", "Путь к выходному файлу")
	cmd.Flags().Int64Var(&opts.seed, "seed", time.Now().UnixNano(), "Seed генератора")

	return cmd
}

func generate(opts genOptions) error {
	records := generator.New(opts.seed).Batch(opts.count)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации заказов: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
		return fmt.Errorf("не удалось создать каталог: %w", err)
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("ошибка записи файла: %w", err)
	}

	fmt.Printf("Сгенерировано заказов: %d, файл: %s\n", len(records), opts.output)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
