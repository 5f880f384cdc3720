package dto

type SlotListResponse struct {
	PhysicianID int      `json:"physician_id"`
	Date        string   `json:"date"`
	Times       []string `json:"times"`
	Total       int      `json:"total"`
}
