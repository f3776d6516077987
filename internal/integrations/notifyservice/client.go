package notifyservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("notifyservice client: internal error")

	// ErrDispatchFailed возвращается, когда диспетчер уведомлений вернул ошибку
	ErrDispatchFailed = errors.New("notifyservice client: dispatch failed")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент диспетчера уведомлений.
// Отправка событий - fire-and-forget: ядро бронирования не ждёт доставки
// и не откатывает коммит при ошибке отправки.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента диспетчера уведомлений
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Dispatch отправляет событие бронирования диспетчеру
func (c *Client) Dispatch(ctx context.Context, eventType EventType, bookingID, businessID, clientID int64) error {
	event := BookingEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		BookingID:  bookingID,
		BusinessID: businessID,
		ClientID:   clientID,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/events", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: unexpected status code %d", ErrDispatchFailed, resp.StatusCode)
	}

	return nil
}

// DispatchAsync отправляет событие в отдельной горутине.
// Ошибка доставки только логируется - успешность бронирования от неё не зависит.
func (c *Client) DispatchAsync(eventType EventType, bookingID, businessID, clientID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.httpClient.Timeout)
		defer cancel()

		if err := c.Dispatch(ctx, eventType, bookingID, businessID, clientID); err != nil {
			c.log.Error("DispatchAsync: failed to dispatch %s for booking id=%d: %v", eventType, bookingID, err)
			return
		}
		c.log.Info("DispatchAsync: dispatched %s for booking id=%d", eventType, bookingID)
	}()
}
