package api

import "stackassist-backend/internal/models"

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is returned by endpoints with no resource to show.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// InviteResponse carries the created member and, when an invitation email could not
// be sent, a warning naming the failed legs.
type InviteResponse struct {
	Member  *models.TeamMember `json:"member"`
	Warning string             `json:"warning,omitempty"`
}

// TeamResponse lists the tenant's members with their invites.
type TeamResponse struct {
	Members []*models.TeamMember `json:"members"`
	Invites []*models.TeamInvite `json:"invites"`
}

// OnboardingLinkResponse is the body of GET /clients/onboarding-link.
type OnboardingLinkResponse struct {
	Link string `json:"link"`
}
