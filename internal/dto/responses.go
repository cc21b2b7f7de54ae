package dto

import (
	"github.com/google/uuid"

	"github.com/bizbridge/acquisition-backend/internal/models"
	"github.com/bizbridge/acquisition-backend/internal/workflow"
)

// ErrorResponse represents a standardized error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standardized success payload
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthResponse represents the result of register/login/refresh
type AuthResponse struct {
	User      *models.User    `json:"user,omitempty"`
	Profile   *models.Profile `json:"profile,omitempty"`
	TokenPair interface{}     `json:"tokens"`
}

// StageSummary represents a pipeline stage for list and card views,
// enriched with presentation hints the frontend renders directly
type StageSummary struct {
	Stage         string                   `json:"stage"`
	Name          string                   `json:"name"`
	Status        string                   `json:"status"`
	StatusView    workflow.StageStatusView `json:"status_view"`
	Progress      int                      `json:"progress"`
	ProgressColor string                   `json:"progress_color"`
	Counters      workflow.StageCounters   `json:"counters"`
}

// NewStageSummary builds a StageSummary from stage data as seen by the given user
func NewStageSummary(stage *models.StageData, currentUserID uuid.UUID) StageSummary {
	name := stage.Stage
	if tpl, ok := workflow.Template(stage.Stage); ok {
		name = tpl.Name
	}
	return StageSummary{
		Stage:         stage.Stage,
		Name:          name,
		Status:        stage.Status,
		StatusView:    workflow.StatusView(stage.Status),
		Progress:      stage.Progress,
		ProgressColor: workflow.ProgressColor(stage.Progress),
		Counters: workflow.StageCounters{
			CompletedChecklistItems: workflow.CompletedChecklistItems(stage),
			TotalChecklistItems:     len(stage.Checklist),
			PendingApprovals:        workflow.PendingApprovals(stage),
			UnreadComments:          workflow.UnreadCommentCount(stage, currentUserID),
			Documents:               len(stage.Documents),
		},
	}
}

// DealResponse represents a deal with presentation hints
type DealResponse struct {
	*models.Deal
	ProgressColor  string         `json:"progress_color"`
	StageSummaries []StageSummary `json:"stage_summaries,omitempty"`
}

// NewDealResponse builds a DealResponse as seen by the given user
func NewDealResponse(deal *models.Deal, currentUserID uuid.UUID) *DealResponse {
	resp := &DealResponse{
		Deal:          deal,
		ProgressColor: workflow.ProgressColor(deal.OverallProgress),
	}
	for i := range deal.Stages {
		resp.StageSummaries = append(resp.StageSummaries, NewStageSummary(&deal.Stages[i], currentUserID))
	}
	return resp
}

// StageResponse represents a full stage with presentation hints
type StageResponse struct {
	*models.StageData
	Summary StageSummary `json:"summary"`
}

// NewStageResponse builds a StageResponse as seen by the given user
func NewStageResponse(stage *models.StageData, currentUserID uuid.UUID) *StageResponse {
	return &StageResponse{
		StageData: stage,
		Summary:   NewStageSummary(stage, currentUserID),
	}
}

// BusinessResponse represents a listing with viewer-specific flags
type BusinessResponse struct {
	*models.Business
	IsFavorite bool `json:"is_favorite"`
}

// MatchWithDealResponse represents an accepted match together with the created deal
type MatchWithDealResponse struct {
	Match *models.Match `json:"match"`
	Deal  *DealResponse `json:"deal,omitempty"`
}
