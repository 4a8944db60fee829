package handlers

// HealthResponse is the response of the health check
type HealthResponse struct {
	Status string `json:"status"`
}

// ShareResponse carries the public link to a draft
type ShareResponse struct {
	URL   string `json:"url"`
	QRURL string `json:"qrUrl"`
}

// ReloadResponse is the response for a catalog reload
type ReloadResponse struct {
	Armies int `json:"armies"`
}
