package dto

type CreateTicketRequest struct {
	Title     string `json:"title"`
	CreatorID string `json:"creator_id"`
}

type UpdateTicketRequest struct {
	Status string `json:"status"`
}

type CreateCreatorRequest struct {
	Name       string  `json:"name"`
	IdentityID *string `json:"identity_id,omitempty"`
}

type UpdateCreatorRequest struct {
	Name string `json:"name"`
}
