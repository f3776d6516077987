package special_day

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/handlers"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/middleware"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/service/schedule"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/service/schedule/models"
)

const (
	msgInvalidBusinessID  = "некорректный ID бизнеса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "переопределение на дату не найдено"
	msgBusinessNotFound   = "бизнес не найден"
	msgForbidden          = "доступ запрещен"
	msgInvalidSchedule    = "некорректное расписание"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleGet GET /api/v1/businesses/{businessId}/special-days/{date}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	businessID, day, ok := h.parsePath(w, r, "GET")
	if !ok {
		return
	}

	result, err := h.service.GetSpecialDay(r.Context(), businessID, day)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrSpecialDayNotFound):
			h.logger.Warn("GET /businesses/{id}/special-days/{date} - Not found: business_id=%d, day=%s",
				businessID, day.Format(domain.DateFormat))
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /businesses/{id}/special-days/{date} - Failed: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/{id}/special-days/{date} - Retrieved: business_id=%d, day=%s",
		businessID, day.Format(domain.DateFormat))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandlePut PUT /api/v1/businesses/{businessId}/special-days/{date}
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	businessID, day, ok := h.parsePath(w, r, "PUT")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /businesses/{id}/special-days/{date} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.SpecialDayRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /businesses/{id}/special-days/{date} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	result, err := h.service.PutSpecialDay(r.Context(), businessID, day, &req)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrBusinessNotFound):
			h.logger.Warn("PUT /businesses/{id}/special-days/{date} - Business not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("PUT /businesses/{id}/special-days/{date} - Access denied: business_id=%d, user_id=%d",
				businessID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, schedule.ErrInvalidSchedule), errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("PUT /businesses/{id}/special-days/{date} - Invalid override: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondBadRequest(w, msgInvalidSchedule)

		default:
			h.logger.Error("PUT /businesses/{id}/special-days/{date} - Failed: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /businesses/{id}/special-days/{date} - Saved: business_id=%d, day=%s, user_id=%d",
		businessID, day.Format(domain.DateFormat), userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleDelete DELETE /api/v1/businesses/{businessId}/special-days/{date}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	businessID, day, ok := h.parsePath(w, r, "DELETE")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /businesses/{id}/special-days/{date} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	err := h.service.DeleteSpecialDay(r.Context(), businessID, day, userID)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrSpecialDayNotFound):
			h.logger.Warn("DELETE /businesses/{id}/special-days/{date} - Not found: business_id=%d, day=%s",
				businessID, day.Format(domain.DateFormat))
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, schedule.ErrBusinessNotFound):
			h.logger.Warn("DELETE /businesses/{id}/special-days/{date} - Business not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("DELETE /businesses/{id}/special-days/{date} - Access denied: business_id=%d, user_id=%d",
				businessID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("DELETE /businesses/{id}/special-days/{date} - Failed: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /businesses/{id}/special-days/{date} - Deleted: business_id=%d, day=%s, user_id=%d",
		businessID, day.Format(domain.DateFormat), userID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

// parsePath извлекает и валидирует businessId и date из URL
func (h *Handler) parsePath(w http.ResponseWriter, r *http.Request, method string) (int64, time.Time, bool) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s /businesses/{id}/special-days/{date} - Invalid business ID: %v", method, err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return 0, time.Time{}, false
	}

	day, err := time.Parse(domain.DateFormat, vars["date"])
	if err != nil {
		h.logger.Warn("%s /businesses/{id}/special-days/{date} - Invalid date: %v", method, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return 0, time.Time{}, false
	}

	return businessID, day, true
}
