package complete_sweep

import (
	"net/http"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/api/handlers"
)

type Handler struct {
	useCase CompletePastBookingsUseCase
	logger  Logger
}

func NewHandler(useCase CompletePastBookingsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /internal/sweep/completed
// Внутренний endpoint для планировщика; идемпотентен, безопасен для ретраев
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.useCase.Execute(r.Context())
	if err != nil {
		h.logger.Error("POST /internal/sweep/completed - Sweep failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /internal/sweep/completed - Sweep finished: completed=%d", result.CompletedCount)
	handlers.RespondJSON(w, http.StatusOK, result)
}
