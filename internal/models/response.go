package models

type AuthResponse struct {
	UID   string `json:"uid"`
	Token string `json:"token"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
