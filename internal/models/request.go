package models

// CreateOrderRequest is the body of PUT /orders/{order_id}. The id comes from
// the path and the owner from the bearer token.
type CreateOrderRequest struct {
	Status   OrderStatus      `json:"status" example:"uploaded"`
	Customer Customer         `json:"customer"`
	Options  Options          `json:"options"`
	Notes    string           `json:"notes"`
	Files    []FileDescriptor `json:"files"`
}

type PatchFileRequest struct {
	FileID string `json:"fileId" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
