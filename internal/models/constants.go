package models

// UserRole константы ролей пользователей
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// DealStage константы этапов сделки (фиксированный порядок пайплайна)
const (
	StageNDA          = "nda"
	StageDataRoom     = "data-room"
	StageOffer        = "offer"
	StageDueDiligence = "due-diligence"
	StageLOI          = "loi"
	StageClosing      = "closing"
)

// StageOrder задаёт канонический порядок этапов сделки.
// Любая сделка содержит ровно эти шесть этапов именно в этом порядке.
var StageOrder = []string{
	StageNDA,
	StageDataRoom,
	StageOffer,
	StageDueDiligence,
	StageLOI,
	StageClosing,
}

// DealStatus константы статусов сделки
const (
	DealStatusActive    = "active"
	DealStatusOnHold    = "on-hold"
	DealStatusCancelled = "cancelled"
	DealStatusCompleted = "completed"
)

// StageStatus константы статусов этапа
const (
	StageStatusPending    = "pending"
	StageStatusInProgress = "in-progress"
	StageStatusCompleted  = "completed"
	StageStatusBlocked    = "blocked"
)

// TaskOwner константы ответственных за задачу или этап
const (
	OwnerBuyer  = "buyer"
	OwnerSeller = "seller"
	OwnerBoth   = "both"
)

// ChecklistPriority константы приоритетов пунктов чеклиста
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// DocumentStatus константы статусов документа этапа
const (
	DocumentStatusDraft    = "draft"
	DocumentStatusReview   = "review"
	DocumentStatusApproved = "approved"
	DocumentStatusRejected = "rejected"
)

// ConfidentialityLevel константы уровней конфиденциальности документа
const (
	ConfidentialityPublic   = "public"
	ConfidentialityPrivate  = "confidential"
	ConfidentialityRestrict = "highly-confidential"
)

// ApprovalStatus константы статусов согласований
const (
	ApprovalStatusPending         = "pending"
	ApprovalStatusApproved        = "approved"
	ApprovalStatusRejected        = "rejected"
	ApprovalStatusRequiresChanges = "requires-changes"
)

// MatchStatus константы статусов заявки покупателя
const (
	MatchStatusPending  = "pending"
	MatchStatusAccepted = "accepted"
	MatchStatusDeclined = "declined"
)

// BusinessStatus константы статусов объявления о продаже бизнеса
const (
	BusinessStatusDraft      = "draft"
	BusinessStatusActive     = "active"
	BusinessStatusUnderOffer = "under-offer"
	BusinessStatusSold       = "sold"
	BusinessStatusArchived   = "archived"
)

// ValidUserRoles список валидных ролей пользователей
var ValidUserRoles = map[string]struct{}{
	RoleBuyer:  {},
	RoleSeller: {},
}

// ValidDealStages список валидных этапов сделки
var ValidDealStages = map[string]struct{}{
	StageNDA:          {},
	StageDataRoom:     {},
	StageOffer:        {},
	StageDueDiligence: {},
	StageLOI:          {},
	StageClosing:      {},
}

// ValidDealStatuses список валидных статусов сделки
var ValidDealStatuses = map[string]struct{}{
	DealStatusActive:    {},
	DealStatusOnHold:    {},
	DealStatusCancelled: {},
	DealStatusCompleted: {},
}

// ValidStageStatuses список валидных статусов этапа
var ValidStageStatuses = map[string]struct{}{
	StageStatusPending:    {},
	StageStatusInProgress: {},
	StageStatusCompleted:  {},
	StageStatusBlocked:    {},
}

// ValidTaskOwners список валидных ответственных
var ValidTaskOwners = map[string]struct{}{
	OwnerBuyer:  {},
	OwnerSeller: {},
	OwnerBoth:   {},
}

// ValidDocumentStatuses список валидных статусов документов
var ValidDocumentStatuses = map[string]struct{}{
	DocumentStatusDraft:    {},
	DocumentStatusReview:   {},
	DocumentStatusApproved: {},
	DocumentStatusRejected: {},
}

// ValidConfidentialityLevels список валидных уровней конфиденциальности
var ValidConfidentialityLevels = map[string]struct{}{
	ConfidentialityPublic:   {},
	ConfidentialityPrivate:  {},
	ConfidentialityRestrict: {},
}

// ValidBusinessStatuses список валидных статусов объявлений
var ValidBusinessStatuses = map[string]struct{}{
	BusinessStatusDraft:      {},
	BusinessStatusActive:     {},
	BusinessStatusUnderOffer: {},
	BusinessStatusSold:       {},
	BusinessStatusArchived:   {},
}
