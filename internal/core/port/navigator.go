package port

import (
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
)

// NavigatorPort выполняет переход на другой маршрут визита.
type NavigatorPort interface {
	Navigate(route domain.Route)
}

// SchedulerPort планирует отложенные действия (таймеры показа сообщений форм).
type SchedulerPort interface {
	// AfterFunc вызывает f через d. Возвращенная функция отменяет вызов.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}
