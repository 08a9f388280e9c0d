package server

import (
	"context"
	"encoding/json"
	"log"

	"pulse/internal/models"
	"pulse/internal/observability"
)

// Event type constants prevent typos in event names.
const (
	EventNotification    = "notification"
	EventMessagesDropped = "messages_dropped"
)

// publishNotification pushes a freshly persisted notification to the
// recipient's live connections. Delivery is best-effort: the database row is
// the system of record, so a failed push is only logged.
func (s *Server) publishNotification(n *models.Notification) {
	event := map[string]interface{}{
		"type":    EventNotification,
		"payload": n,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal notification event: %v", err)
		return
	}
	message := string(eventJSON)

	if s.hub != nil {
		s.hub.Broadcast(n.UserID, message)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishUser(context.Background(), n.UserID, message); err != nil {
			log.Printf("failed to publish notification to user %d: %v", n.UserID, err)
		}
	}

	observability.NotificationsDispatched.WithLabelValues(n.Type).Inc()
}
