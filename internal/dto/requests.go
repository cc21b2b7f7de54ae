package dto

import (
	"time"
)

// RegisterRequest represents the request to register a new user
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

// LoginRequest represents the request to log in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the request to refresh a token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest represents the request to update user profile
type UpdateProfileRequest struct {
	DisplayName string  `json:"display_name" binding:"required"`
	CompanyName *string `json:"company_name"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
	Phone       *string `json:"phone"`
	Website     *string `json:"website"`
	PhotoID     *string `json:"photo_id"`
}

// CreateBusinessRequest represents the request to create a business listing
type CreateBusinessRequest struct {
	Name          string   `json:"name" binding:"required"`
	Industry      string   `json:"industry" binding:"required"`
	Location      string   `json:"location"`
	Description   string   `json:"description" binding:"required"`
	AnnualRevenue *float64 `json:"annual_revenue"`
	Valuation     *float64 `json:"valuation"`
	AskingPrice   *float64 `json:"asking_price"`
	EmployeeCount *int     `json:"employee_count"`
	FoundedYear   *int     `json:"founded_year"`
}

// UpdateBusinessRequest represents the request to update a business listing
type UpdateBusinessRequest struct {
	Name          string   `json:"name" binding:"required"`
	Industry      string   `json:"industry" binding:"required"`
	Location      string   `json:"location"`
	Description   string   `json:"description" binding:"required"`
	AnnualRevenue *float64 `json:"annual_revenue"`
	Valuation     *float64 `json:"valuation"`
	AskingPrice   *float64 `json:"asking_price"`
	EmployeeCount *int     `json:"employee_count"`
	FoundedYear   *int     `json:"founded_year"`
}

// UpdateBusinessStatusRequest represents the request to change listing status
type UpdateBusinessStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AddBusinessImageRequest represents the request to attach an uploaded image
type AddBusinessImageRequest struct {
	MediaID string `json:"media_id" binding:"required"`
}

// CreateMatchRequest represents a buyer's request to start a deal
type CreateMatchRequest struct {
	BusinessID string  `json:"business_id" binding:"required"`
	Message    *string `json:"message"`
}

// UpdateDealStatusRequest represents the request to change deal status
type UpdateDealStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateDealTermsRequest represents the request to update deal terms
type UpdateDealTermsRequest struct {
	DealValue         *float64 `json:"deal_value"`
	DealStructure     *string  `json:"deal_structure"`
	FinancingType     []string `json:"financing_type"`
	TargetClosingDate *string  `json:"target_closing_date"`
}

// ParseTargetClosingDate converts string date to time.Time pointer
func (r *UpdateDealTermsRequest) ParseTargetClosingDate() (*time.Time, error) {
	if r.TargetClosingDate == nil || *r.TargetClosingDate == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *r.TargetClosingDate)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// ToggleChecklistItemRequest represents marking a checklist item done or not done
type ToggleChecklistItemRequest struct {
	Completed bool `json:"completed"`
}

// UploadStageDocumentRequest represents attaching an uploaded file to a stage
type UploadStageDocumentRequest struct {
	MediaID              string `json:"media_id" binding:"required"`
	Title                string `json:"title" binding:"required"`
	Category             string `json:"category"`
	ConfidentialityLevel string `json:"confidentiality_level"`
}

// UpdateDocumentStatusRequest represents changing a stage document status
type UpdateDocumentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AddStageCommentRequest represents adding a comment to a stage
type AddStageCommentRequest struct {
	Content   string `json:"content" binding:"required"`
	IsPrivate bool   `json:"is_private"`
}

// EditStageCommentRequest represents editing a stage comment
type EditStageCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateApprovalRequest represents requesting a stage approval
type CreateApprovalRequest struct {
	Title        string `json:"title" binding:"required"`
	RequiredFrom string `json:"required_from" binding:"required"`
}

// ApprovalActionRequest represents resolving a stage approval
type ApprovalActionRequest struct {
	Status string  `json:"status" binding:"required"`
	Reason *string `json:"reason"`
}

// AddTeamMemberRequest represents adding a deal team member
type AddTeamMemberRequest struct {
	Name   string  `json:"name" binding:"required"`
	Role   string  `json:"role" binding:"required"`
	Email  *string `json:"email"`
	UserID *string `json:"user_id"`
}

// AddKeyDateRequest represents adding a deal key date
type AddKeyDateRequest struct {
	Title string `json:"title" binding:"required"`
	DueAt string `json:"due_at" binding:"required"`
}

// ParseDueAt converts string date to time.Time
func (r *AddKeyDateRequest) ParseDueAt() (time.Time, error) {
	return time.Parse(time.RFC3339, r.DueAt)
}

// SendMessageRequest represents the request to send a message
type SendMessageRequest struct {
	Content      string  `json:"content" binding:"required"`
	AttachmentID *string `json:"attachment_id"`
}
