package utils

import (
	"time"
)

// session.go - торговые сессии
//
// Назначение:
// Определение, попадает ли момент времени в окно торговой сессии.
// Вне сессий ядро не делает рыночных запросов.
//
// Окна:
// - утро: 09:30 - 11:30 включительно
// - день: 13:00 - endHour (час окончания настраивается, обычно 15)
//
// Проверка выполняется один раз в начале каждого цикла, по локальным
// часам процесса.

// InMorningSession возвращает true для окна 09:30-11:30 включительно
func InMorningSession(t time.Time) bool {
	h, m := t.Hour(), t.Minute()
	switch {
	case h == 9 && m >= 30:
		return true
	case h == 10:
		return true
	case h == 11 && m <= 30:
		return true
	}
	return false
}

// InAfternoonSession возвращает true для окна 13:00 - endHour
//
// Граница окончания исключающая: при endHour=15 сессия длится до 14:59:59.
func InAfternoonSession(t time.Time, endHour int) bool {
	h := t.Hour()
	return h >= 13 && h < endHour
}

// InTradingSession возвращает true если момент попадает в любое торговое окно
func InTradingSession(t time.Time, endHour int) bool {
	return InMorningSession(t) || InAfternoonSession(t, endHour)
}
