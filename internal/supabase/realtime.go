package supabase

import (
	"fmt"
	"time"
)

// RealtimeClient publishes project lifecycle events by inserting rows into
// the project_events table. Supabase Realtime relays table changes to
// subscribed clients, so an insert is the publish.
type RealtimeClient struct {
	client *Client
}

func NewRealtimeClient(client *Client) *RealtimeClient {
	return &RealtimeClient{client: client}
}

func (r *RealtimeClient) PublishProjectEvent(projectID, event string, payload map[string]any) error {
	row := map[string]any{
		"project_id": projectID,
		"event":      event,
		"payload":    payload,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	_, _, err := r.client.Supabase.From("project_events").Insert(row, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event, err)
	}
	return nil
}

// Event payloads
func SaveCompletedPayload(projectID string, sceneCount, shotCount int) map[string]any {
	return map[string]any{
		"project_id":  projectID,
		"status":      "saved",
		"scene_count": sceneCount,
		"shot_count":  shotCount,
	}
}

func ProjectDeletedPayload(projectID string) map[string]any {
	return map[string]any{
		"project_id": projectID,
		"status":     "deleted",
	}
}
