// Package scheduling содержит чистую вычислительную часть ядра бронирования:
// вычисление эффективного рабочего окна на дату, генерацию доступных слотов
// и проверку пересечения интервалов. Пакет не обращается к БД и не читает
// системные часы - все входные данные передаются параметрами, поэтому одна
// и та же логика используется всеми точками вызова (публичная страница
// бронирования, бронирование от имени бизнеса, перенос записи).
package scheduling

import (
	"fmt"
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

// Interval занятый временной интервал [Start, End) в пределах одного дня
type Interval struct {
	Start types.TimeString
	End   types.TimeString
}

// IsZeroLength возвращает true, если интервал не покрывает ни одной минуты
func (i Interval) IsZeroLength() bool {
	return !i.Start.IsBefore(i.End)
}

// EffectiveWindow вычисляет эффективное рабочее окно бизнеса на дату.
// Если для даты есть переопределение (праздник, особый день) - окно берётся
// целиком из него, включая флаг закрытия. Недельное расписание и
// переопределение никогда не смешиваются.
func EffectiveWindow(weekly domain.DaySchedule, override *domain.SpecialDayOverride) domain.DaySchedule {
	if override != nil {
		return override.ToDaySchedule()
	}
	return weekly
}

// Overlaps проверяет пересечение двух полуоткрытых интервалов [aStart, aEnd) и [bStart, bEnd).
// Граничащие интервалы (конец одного равен началу другого) НЕ пересекаются.
func Overlaps(aStart, aEnd, bStart, bEnd types.TimeString) bool {
	return aStart.IsBefore(bEnd) && bStart.IsBefore(aEnd)
}

// OccupiedFromBookings собирает занятые интервалы из бронирований.
// Учитываются только бронирования, удерживающие свой интервал
// (pending и confirmed); завершённые и отменённые - история.
func OccupiedFromBookings(bookings []*domain.Booking) []Interval {
	occupied := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		if !b.IsOccupying() {
			continue
		}
		occupied = append(occupied, Interval{Start: b.StartTime, End: b.EndTime})
	}
	return occupied
}

// GenerateSlots генерирует список доступных слотов для рабочего окна window на дату date.
//
// Кандидаты перебираются от открытия до закрытия с шагом granularityMinutes.
// Кандидат s с концом e = s + totalDurationMinutes отбрасывается, если:
//   - e выходит за время закрытия;
//   - [s, e) пересекает любой перерыв (частичное пересечение тоже отклоняет -
//     услуга не может быть разорвана перерывом);
//   - [s, e) пересекает любой занятый интервал;
//   - date - сегодня и s раньше, чем now + leadTimeMinutes.
//
// Прошедшие даты дают пустой результат. Окно с openTime >= closeTime тоже
// даёт пустой результат, а не ошибку - такие данные ответственность вызывающего.
func GenerateSlots(
	window domain.DaySchedule,
	date time.Time,
	granularityMinutes int,
	totalDurationMinutes int,
	occupied []Interval,
	now time.Time,
	leadTimeMinutes int,
) ([]domain.AvailableSlot, error) {
	if totalDurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: got %d minutes", ErrInvalidDuration, totalDurationMinutes)
	}
	if granularityMinutes <= 0 {
		return nil, fmt.Errorf("%w: got %d minutes", ErrInvalidGranularity, granularityMinutes)
	}
	if leadTimeMinutes < 0 {
		return nil, fmt.Errorf("%w: got %d minutes", ErrInvalidLeadTime, leadTimeMinutes)
	}

	if !window.IsOpen {
		return []domain.AvailableSlot{}, nil
	}

	if IsDateInPast(date, now) {
		return []domain.AvailableSlot{}, nil
	}

	openMinutes, err := window.OpenTime.Minutes()
	if err != nil {
		return nil, fmt.Errorf("%w: open time: %v", ErrInvalidWindow, err)
	}
	closeMinutes, err := closingMinutes(window.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("%w: close time: %v", ErrInvalidWindow, err)
	}

	// Минимально допустимое начало слота: для сегодняшней даты - now + leadTime,
	// для будущих дат ограничения нет.
	minStartMinutes := -1
	if IsSameDay(date, now) {
		minStartMinutes = now.Hour()*60 + now.Minute() + leadTimeMinutes
	}

	slots := make([]domain.AvailableSlot, 0)

	for start := openMinutes; start < closeMinutes; start += granularityMinutes {
		end := start + totalDurationMinutes

		// Дальше по сетке каждый конец будет только позже - выходим
		if end > closeMinutes {
			break
		}

		if start < minStartMinutes {
			continue
		}

		startTS, err := types.NewTimeStringFromMinutes(start)
		if err != nil {
			return nil, fmt.Errorf("%w: candidate start: %v", ErrInvalidWindow, err)
		}
		endTS, err := startTS.AddMinutes(totalDurationMinutes)
		if err != nil {
			return nil, fmt.Errorf("%w: candidate end: %v", ErrInvalidWindow, err)
		}

		if intersectsAny(startTS, endTS, window.Breaks) {
			continue
		}
		if intersectsOccupied(startTS, endTS, occupied) {
			continue
		}

		slots = append(slots, domain.AvailableSlot{
			StartTime:       startTS,
			EndTime:         endTS,
			DurationMinutes: totalDurationMinutes,
		})
	}

	return slots, nil
}

// intersectsAny проверяет пересечение кандидата с перерывами.
// Перерывы нулевой длины игнорируются.
func intersectsAny(start, end types.TimeString, breaks []domain.BreakInterval) bool {
	for _, br := range breaks {
		if br.IsZeroLength() {
			continue
		}
		if Overlaps(start, end, br.Start, br.End) {
			return true
		}
	}
	return false
}

// intersectsOccupied проверяет пересечение кандидата с занятыми интервалами
func intersectsOccupied(start, end types.TimeString, occupied []Interval) bool {
	for _, o := range occupied {
		if o.IsZeroLength() {
			continue
		}
		if Overlaps(start, end, o.Start, o.End) {
			return true
		}
	}
	return false
}

// closingMinutes парсит время закрытия; "24:00" означает конец суток
func closingMinutes(close types.TimeString) (int, error) {
	if close == "24:00" {
		return 24 * 60, nil
	}
	return close.Minutes()
}

// IsSameDay проверяет, что две даты относятся к одному календарному дню
func IsSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsDateInPast проверяет, что дата раньше сегодняшнего дня.
// Сравниваются календарные компоненты, а не моменты времени: date приходит
// из запроса как полночь UTC, а now - в референсной таймзоне сервиса,
// и сравнение полуночей как инстантов объявляло бы сегодняшний день
// прошедшим в таймзонах западнее UTC.
func IsDateInPast(date, now time.Time) bool {
	y1, m1, d1 := date.Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return d1 < d2
}
