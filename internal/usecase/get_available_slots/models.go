package get_available_slots

import (
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	BusinessID int64     // ID бизнеса
	ServiceIDs []int64   // Выбранные услуги (одна и более)
	Date       time.Time // Дата для получения слотов (без времени, в референсной таймзоне)
	Limit      int       // Максимальное число слотов в ответе (0 = без ограничения)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            time.Time             // Дата, на которую запрашивались слоты
	BusinessID      int64                 // ID бизнеса
	ServiceIDs      []int64               // Выбранные услуги
	DurationMinutes int                   // Суммарная длительность выбранных услуг
	Slots           []domain.AvailableSlot // Список доступных слотов по возрастанию времени
}
