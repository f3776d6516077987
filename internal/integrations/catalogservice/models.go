package catalogservice

// Business профиль бизнеса из каталога ATLAS
type Business struct {
	ID                     int64   `json:"id"`
	Name                   string  `json:"name"`
	AutoConfirm            bool    `json:"auto_confirm"`
	SlotGranularityMinutes int     `json:"slot_granularity_minutes"` // 0 = использовать дефолт сервиса
	MinLeadTimeMinutes     int     `json:"min_lead_time_minutes"`
	ManagerIDs             []int64 `json:"manager_ids"`
}

// Service услуга из каталога
type Service struct {
	ID              int64   `json:"id"`
	BusinessID      int64   `json:"business_id"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	IsActive        bool    `json:"is_active"`
}

// ErrorResponse модель ошибки от каталога
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
