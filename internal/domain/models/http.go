package models

// Requests for tracking HTTP endpoints. Defined in domain for consistency and reuse.

type TrackingRequest struct {
	BotID      string `query:"bot_id" json:"bot_id" validate:"required"`
	OwnerID    string `query:"owner_id" json:"owner_id"`
	Privileged bool   `query:"privileged" json:"privileged"`
	Search     string `query:"search" json:"search" validate:"omitempty,max=128"`
	Status     string `query:"status" json:"status" default:"all" validate:"oneof=all success failed pending"`
	Source     string `query:"source" json:"source" default:"all" validate:"oneof=all origin execution"`
	From       string `query:"from" json:"from"`
	To         string `query:"to" json:"to"`
	Owner      string `query:"owner" json:"owner"` // drill-down filter, distinct from scope owner
}

type SummaryRequest struct {
	BotID      string `query:"bot_id" json:"bot_id" validate:"required"`
	OwnerID    string `query:"owner_id" json:"owner_id"`
	Privileged bool   `query:"privileged" json:"privileged"`
}

type NormalizeRequest struct {
	ID string `query:"id" json:"id" validate:"required,max=128"`
}
