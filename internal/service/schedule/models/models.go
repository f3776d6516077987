package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

var (
	// ErrInvalidTime возвращается при некорректном формате времени
	ErrInvalidTime = errors.New("invalid time format, expected HH:MM")

	// ErrInvalidWeekday возвращается при некорректном названии дня недели
	ErrInvalidWeekday = errors.New("invalid weekday name")
)

// weekdayNames порядок дней недели в API (как их отдаёт и принимает интерфейс настроек)
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// BreakDTO перерыв в API модели
type BreakDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DayScheduleDTO расписание одного дня в API модели
type DayScheduleDTO struct {
	IsOpen    bool       `json:"isOpen"`
	OpenTime  string     `json:"openTime,omitempty"`
	CloseTime string     `json:"closeTime,omitempty"`
	Breaks    []BreakDTO `json:"breaks,omitempty"`
}

// WeeklyScheduleRequest запрос на полную замену недельного расписания.
// Ключи - имена дней недели в нижнем регистре; требуется ровно 7 записей.
type WeeklyScheduleRequest struct {
	UserID int64                     `json:"userId"`
	Days   map[string]DayScheduleDTO `json:"days"`
}

// WeeklyScheduleResponse недельное расписание в ответе
type WeeklyScheduleResponse struct {
	BusinessID int64                     `json:"businessId"`
	Days       map[string]DayScheduleDTO `json:"days"`
}

// SpecialDayRequest запрос на создание/обновление переопределения на дату
type SpecialDayRequest struct {
	UserID    int64      `json:"userId"`
	IsClosed  bool       `json:"isClosed"`
	OpenTime  string     `json:"openTime,omitempty"`
	CloseTime string     `json:"closeTime,omitempty"`
	Breaks    []BreakDTO `json:"breaks,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

// SpecialDayResponse переопределение на дату в ответе
type SpecialDayResponse struct {
	BusinessID int64      `json:"businessId"`
	Day        string     `json:"day"`
	IsClosed   bool       `json:"isClosed"`
	OpenTime   string     `json:"openTime,omitempty"`
	CloseTime  string     `json:"closeTime,omitempty"`
	Breaks     []BreakDTO `json:"breaks,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

// ToDomainWeekly конвертирует запрос в domain модель с валидацией формата времени
func (r *WeeklyScheduleRequest) ToDomainWeekly(businessID int64) (*domain.WeeklySchedule, error) {
	weekly := &domain.WeeklySchedule{
		BusinessID: businessID,
		Days:       make(map[time.Weekday]domain.DaySchedule, 7),
	}

	for name, dto := range r.Days {
		weekday, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
		}

		day, err := dto.toDomainDay(businessID, weekday)
		if err != nil {
			return nil, err
		}
		weekly.Days[weekday] = day
	}

	return weekly, nil
}

func (dto DayScheduleDTO) toDomainDay(businessID int64, weekday time.Weekday) (domain.DaySchedule, error) {
	day := domain.DaySchedule{
		BusinessID: businessID,
		Weekday:    weekday,
		IsOpen:     dto.IsOpen,
	}

	if !dto.IsOpen {
		// Времена закрытого дня игнорируются
		return day, nil
	}

	openTime, err := types.NewTimeStringFromString(dto.OpenTime)
	if err != nil {
		return domain.DaySchedule{}, fmt.Errorf("%w: openTime %q", ErrInvalidTime, dto.OpenTime)
	}
	closeTime, err := types.NewTimeStringFromString(dto.CloseTime)
	if err != nil {
		return domain.DaySchedule{}, fmt.Errorf("%w: closeTime %q", ErrInvalidTime, dto.CloseTime)
	}

	day.OpenTime = openTime
	day.CloseTime = closeTime

	for _, br := range dto.Breaks {
		interval, err := toDomainBreak(br)
		if err != nil {
			return domain.DaySchedule{}, err
		}
		day.Breaks = append(day.Breaks, interval)
	}

	return day, nil
}

func toDomainBreak(br BreakDTO) (domain.BreakInterval, error) {
	start, err := types.NewTimeStringFromString(br.Start)
	if err != nil {
		return domain.BreakInterval{}, fmt.Errorf("%w: break start %q", ErrInvalidTime, br.Start)
	}
	end, err := types.NewTimeStringFromString(br.End)
	if err != nil {
		return domain.BreakInterval{}, fmt.Errorf("%w: break end %q", ErrInvalidTime, br.End)
	}
	return domain.BreakInterval{Start: start, End: end}, nil
}

// ToDomainOverride конвертирует запрос в domain переопределение
func (r *SpecialDayRequest) ToDomainOverride(businessID int64, day time.Time) (*domain.SpecialDayOverride, error) {
	override := &domain.SpecialDayOverride{
		BusinessID: businessID,
		Day:        day,
		IsClosed:   r.IsClosed,
		Notes:      r.Notes,
	}

	if r.IsClosed {
		return override, nil
	}

	openTime, err := types.NewTimeStringFromString(r.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("%w: openTime %q", ErrInvalidTime, r.OpenTime)
	}
	closeTime, err := types.NewTimeStringFromString(r.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("%w: closeTime %q", ErrInvalidTime, r.CloseTime)
	}

	override.OpenTime = openTime
	override.CloseTime = closeTime

	for _, br := range r.Breaks {
		interval, err := toDomainBreak(br)
		if err != nil {
			return nil, err
		}
		override.Breaks = append(override.Breaks, interval)
	}

	return override, nil
}

// FromDomainWeekly конвертирует domain расписание в ответ
func FromDomainWeekly(weekly *domain.WeeklySchedule) *WeeklyScheduleResponse {
	days := make(map[string]DayScheduleDTO, 7)
	for name, weekday := range weekdayNames {
		day, ok := weekly.Days[weekday]
		if !ok {
			days[name] = DayScheduleDTO{IsOpen: false}
			continue
		}
		days[name] = fromDomainDay(day)
	}

	return &WeeklyScheduleResponse{
		BusinessID: weekly.BusinessID,
		Days:       days,
	}
}

func fromDomainDay(day domain.DaySchedule) DayScheduleDTO {
	dto := DayScheduleDTO{IsOpen: day.IsOpen}
	if !day.IsOpen {
		return dto
	}

	dto.OpenTime = day.OpenTime.String()
	dto.CloseTime = day.CloseTime.String()
	for _, br := range day.Breaks {
		dto.Breaks = append(dto.Breaks, BreakDTO{Start: br.Start.String(), End: br.End.String()})
	}
	return dto
}

// FromDomainOverride конвертирует domain переопределение в ответ
func FromDomainOverride(override *domain.SpecialDayOverride) *SpecialDayResponse {
	resp := &SpecialDayResponse{
		BusinessID: override.BusinessID,
		Day:        override.Day.Format(domain.DateFormat),
		IsClosed:   override.IsClosed,
		Notes:      override.Notes,
	}

	if override.IsClosed {
		return resp
	}

	resp.OpenTime = override.OpenTime.String()
	resp.CloseTime = override.CloseTime.String()
	for _, br := range override.Breaks {
		resp.Breaks = append(resp.Breaks, BreakDTO{Start: br.Start.String(), End: br.End.String()})
	}
	return resp
}
