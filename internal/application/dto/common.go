package dto

// ErrorResponse respuesta de error estándar de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// CurrentActiveItemID presente solo en conflictos de ranura ocupada, para
	// que la UI muestre qué artículo sería desplazado.
	CurrentActiveItemID string `json:"current_active_item_id,omitempty"`
}
