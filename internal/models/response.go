package models

type Asset struct {
	StoragePath string `json:"storage_path"`
	StorageURL  string `json:"storage_url"`
}

type AssetsResponse struct {
	Assets []Asset `json:"assets"`
}

type SaveResponse struct {
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
}

type CharactersResponse struct {
	Characters []map[string]any `json:"characters"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
