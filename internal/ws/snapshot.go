package ws

import (
	"time"

	"github.com/spec-kit/escalation-service/internal/api/dto"
	"github.com/spec-kit/escalation-service/internal/repository"
)

// snapshotLimit caps the unread list pushed to a connection.
const snapshotLimit = 5

// BuildSnapshot filters the user's unread notifications through the scope,
// deduplicates them by ticket (keeping the newest, views arrive newest
// ticket first) and caps the list at five entries. The count is the number
// of distinct tickets across all visible rows, matching the list the UI
// would show if unpaginated.
func BuildSnapshot(views []repository.NotificationView, scope Scope, loc *time.Location) ([]dto.NotificationPayload, int) {
	seen := make(map[string]struct{})
	payloads := make([]dto.NotificationPayload, 0, snapshotLimit)

	for i := range views {
		view := &views[i]
		if !scope.AllowsNotification(*view) {
			continue
		}
		if _, dup := seen[view.Notification.TicketID]; dup {
			continue
		}
		seen[view.Notification.TicketID] = struct{}{}
		if len(payloads) < snapshotLimit {
			payloads = append(payloads, dto.SerializeNotification(&view.Notification, &view.Ticket, loc))
		}
	}

	return payloads, len(seen)
}
