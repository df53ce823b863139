package models

type SaveCharactersRequest struct {
	Characters []map[string]any `json:"characters"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
