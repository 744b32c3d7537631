package model

// User carries the identity surface the engine needs: a stable id and the
// device token notifications are addressed to. Authentication itself lives
// outside this module.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	PushToken   string `json:"push_token,omitempty"`
}
