// Package provider предоставляет клиент поставщика рыночных данных.
//
// Поставщик - чёрный ящик с тремя операциями чтения:
//   - справочная таблица конвертируемых облигаций (связь с базовой акцией,
//     цены, премия)
//   - таблица котировок реального времени по облигациям
//   - минутные бары по одному инструменту
//
// Любая операция может отказать временно. Классификация ошибок:
// сетевые сбои помечаются как временные (retry на стороне вызывающего),
// ошибки формы ответа - постоянные, пустой ответ - ErrEmptyResponse.
package provider

import (
	"context"
	"errors"
	"time"
)

// Ошибки поставщика
var (
	// ErrEmptyResponse - поставщик ответил, но данных нет.
	// Для таблиц это означает пропуск всего цикла сканирования.
	ErrEmptyResponse = errors.New("provider returned empty response")

	// ErrNoQuote - по инструменту нет минутных данных
	ErrNoQuote = errors.New("no minute data for instrument")
)

// ReferenceRow - строка справочной таблицы облигаций
type ReferenceRow struct {
	BondCode   string  `json:"bond_code"`
	BondName   string  `json:"bond_name"`
	StockCode  string  `json:"stock_code"`
	StockName  string  `json:"stock_name"`
	StockPrice float64 `json:"stock_price"`  // последняя цена базовой акции
	BondPrice  float64 `json:"bond_price"`   // текущая цена облигации из справочника
	Premium    float64 `json:"premium_rate"` // премия к конверсионной стоимости, %
}

// QuoteRow - строка таблицы котировок реального времени
//
// ChangePercent приходит в целых процентах (1.5 = 1.5%);
// нормализация в долю выполняется потребителем при слиянии.
type QuoteRow struct {
	Code          string  `json:"code"`
	Last          float64 `json:"trade"`         // последняя цена
	ChangePercent float64 `json:"changepercent"` // изменение за день, %
	Volume        float64 `json:"volume"`
	Turnover      float64 `json:"amount"`
}

// MinuteBar - один минутный бар инструмента
type MinuteBar struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// MarketData - операции поставщика, используемые ядром
type MarketData interface {
	// ReferenceTable возвращает справочную таблицу всех облигаций
	ReferenceTable(ctx context.Context) ([]ReferenceRow, error)

	// QuoteTable возвращает котировки реального времени всех облигаций
	QuoteTable(ctx context.Context) ([]QuoteRow, error)

	// MinuteBars возвращает недавние минутные бары одного инструмента,
	// упорядоченные по времени (последний бар - самый свежий)
	MinuteBars(ctx context.Context, symbol string) ([]MinuteBar, error)
}
