package websocket

import (
	"bondmonitor/internal/models"
)

// Типы сообщений в сторону подписчиков
const (
	MessageTypeOpportunity  = "opportunity"
	MessageTypeNotification = "notification"
)

// ============ Типизированные сообщения (без map[string]interface{}) ============
// Избегаем рефлексии при сериализации - известные типы сериализуются быстрее

// OpportunityMessage - сообщение о найденном сигнале
type OpportunityMessage struct {
	Type string             `json:"type"`
	Data models.Opportunity `json:"data"`
}

// NotificationMessage - сообщение с уведомлением (закрытие позиции, ошибки)
type NotificationMessage struct {
	Type string              `json:"type"`
	Data models.Notification `json:"data"`
}

// NewOpportunityMessage создаёт сообщение о сигнале
func NewOpportunityMessage(opp models.Opportunity) *OpportunityMessage {
	return &OpportunityMessage{
		Type: MessageTypeOpportunity,
		Data: opp,
	}
}

// NewNotificationMessage создаёт сообщение с уведомлением
func NewNotificationMessage(n models.Notification) *NotificationMessage {
	return &NotificationMessage{
		Type: MessageTypeNotification,
		Data: n,
	}
}
