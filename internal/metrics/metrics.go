package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// RowsUpserted - Счетчик строк, отправленных в upsert, по сущностям
	RowsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orders_etl",
			Name:      "rows_upserted_total",
			Help:      "Количество строк, записанных через upsert",
		},
		[]string{"entity"}, // Метки: "customer", "address", "order", "line_item", "order_tax"
	)

	// MappingErrors - Счетчик некорректных записей
	MappingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orders_etl",
			Name:      "mapping_errors_total",
			Help:      "Количество записей без обязательных полей",
		},
		[]string{"entity"},
	)

	// DBErrors - Счетчик ошибок базы данных
	DBErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orders_etl",
			Name:      "db_errors_total",
			Help:      "Количество ошибок при работе с БД",
		},
		[]string{"operation"}, // Метки: "begin", "load", "commit"
	)

	// QualityViolations - Счетчик нарушений проверок качества данных
	QualityViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orders_etl",
			Name:      "quality_violations_total",
			Help:      "Количество заказов, не прошедших проверку качества",
		},
		[]string{"check"},
	)

	// RunsTotal - Счетчик прогонов по результату
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orders_etl",
			Name:      "runs_total",
			Help:      "Количество запусков загрузки",
		},
		[]string{"status"}, // Метки: "success", "failed"
	)

	// RunDuration - Длительность прогона
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "orders_etl",
			Name:      "run_duration_seconds",
			Help:      "Длительность загрузки пакета",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)
)

// Push отправляет метрики в Prometheus Pushgateway в конце прогона.
func Push(url, job string) error {
	if err := push.New(url, job).Gatherer(prometheus.DefaultGatherer).Push(); err != nil {
		return fmt.Errorf("ошибка отправки метрик в pushgateway: %w", err)
	}
	return nil
}
