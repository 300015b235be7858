package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"bondmonitor/pkg/retry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client - HTTP реализация MarketData
//
// Назначение:
// Единственная точка обмена с поставщиком рыночных данных. Все три
// операции - GET запросы с JSON ответом.
//
// Функции:
// - Пул соединений и таймаут на запрос (httpclient.go)
// - Rate limiter: вежливый темп обращений к публичному API
// - Классификация ошибок для retry политики вызывающего
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient создаёт клиента поставщика
//
// Параметры:
//   - baseURL: базовый URL API поставщика
//   - timeout: общий таймаут одного запроса
//   - rps: лимит запросов в секунду
//   - burst: размер burst лимитера
func NewClient(baseURL string, timeout time.Duration, rps float64, burst int) *Client {
	cfg := DefaultHTTPClientConfig()
	if timeout > 0 {
		cfg.TotalTimeout = timeout
	}

	return &Client{
		baseURL: baseURL,
		http:    newHTTPClient(cfg),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// ReferenceTable возвращает справочную таблицу всех облигаций
func (c *Client) ReferenceTable(ctx context.Context) ([]ReferenceRow, error) {
	var rows []ReferenceRow
	if err := c.getJSON(ctx, "/api/bond/cov", nil, &rows); err != nil {
		return nil, fmt.Errorf("reference table: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyResponse
	}
	return rows, nil
}

// QuoteTable возвращает котировки реального времени всех облигаций
func (c *Client) QuoteTable(ctx context.Context) ([]QuoteRow, error) {
	var rows []QuoteRow
	if err := c.getJSON(ctx, "/api/bond/cov/spot", nil, &rows); err != nil {
		return nil, fmt.Errorf("quote table: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyResponse
	}
	return rows, nil
}

// MinuteBars возвращает недавние минутные бары одного инструмента
func (c *Client) MinuteBars(ctx context.Context, symbol string) ([]MinuteBar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("period", "1")

	var bars []MinuteBar
	if err := c.getJSON(ctx, "/api/stock/min", q, &bars); err != nil {
		return nil, fmt.Errorf("minute bars %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, ErrNoQuote
	}
	return bars, nil
}

// getJSON выполняет GET запрос и декодирует JSON ответ
//
// Классификация ошибок:
//   - сетевые сбои, 5xx, 429 -> retry.Temporary
//   - 4xx, повреждённый JSON -> retry.Permanent
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Сетевой сбой или таймаут - временная ошибка
		return retry.Temporary(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// продолжаем к декодированию
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return retry.Temporary(fmt.Errorf("provider status %d", resp.StatusCode))
	default:
		return retry.Permanent(fmt.Errorf("provider status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return retry.Temporary(err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		// Неожиданная форма ответа - retry не поможет
		return retry.Permanent(fmt.Errorf("decode response: %w", err))
	}

	return nil
}

// IsTemporary сообщает, стоит ли повторять операцию после этой ошибки
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}

	if retry.RetryIfTemporary(err) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
