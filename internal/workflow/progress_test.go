package workflow

import (
	"testing"

	"github.com/google/uuid"

	"github.com/bizbridge/acquisition-backend/internal/models"
)

func TestOverallProgress(t *testing.T) {
	if got := OverallProgress(nil); got != 0 {
		t.Errorf("без этапов ожидался 0, получили %d", got)
	}

	// nda (5 дней) завершён полностью, data-room (14 дней) наполовину:
	// (100*5 + 50*14) / 19 = 63.15 -> 63.
	stages := []models.StageData{
		{Stage: models.StageNDA, Progress: 100},
		{Stage: models.StageDataRoom, Progress: 50},
	}
	if got := OverallProgress(stages); got != 63 {
		t.Errorf("ожидался взвешенный прогресс 63, получили %d", got)
	}

	// Этап без заготовки не участвует в расчёте.
	stages = append(stages, models.StageData{Stage: "ipo", Progress: 100})
	if got := OverallProgress(stages); got != 63 {
		t.Errorf("неизвестный этап не должен влиять на прогресс, получили %d", got)
	}

	all := make([]models.StageData, 0, len(models.StageOrder))
	for _, stage := range models.StageOrder {
		all = append(all, models.StageData{Stage: stage, Progress: 100})
	}
	if got := OverallProgress(all); got != 100 {
		t.Errorf("при полностью завершённых этапах ожидалось 100, получили %d", got)
	}
}

func TestStageCompletionProgress(t *testing.T) {
	empty := &models.StageData{Progress: 40}
	if got := StageCompletionProgress(empty); got != 40 {
		t.Errorf("без чеклиста возвращается сохранённый прогресс, получили %d", got)
	}

	stage := &models.StageData{
		Checklist: []models.ChecklistItem{
			{Completed: true},
			{Completed: true},
			{Completed: false},
		},
	}
	if got := StageCompletionProgress(stage); got != 67 {
		t.Errorf("ожидалось 67 (2 из 3 с округлением), получили %d", got)
	}
}

func TestCanAdvanceStage(t *testing.T) {
	stage := &models.StageData{
		Checklist: []models.ChecklistItem{
			{Required: true, Completed: true},
			{Required: false, Completed: false},
		},
	}
	if !CanAdvanceStage(stage) {
		t.Error("невыполненная необязательная задача не должна блокировать переход")
	}

	stage.Checklist = append(stage.Checklist, models.ChecklistItem{Required: true, Completed: false})
	if CanAdvanceStage(stage) {
		t.Error("невыполненная обязательная задача должна блокировать переход")
	}
	stage.Checklist[2].Completed = true

	stage.Approvals = []models.StageApproval{{Status: models.ApprovalStatusPending}}
	if CanAdvanceStage(stage) {
		t.Error("неразрешённое согласование должно блокировать переход")
	}

	stage.Approvals[0].Status = models.ApprovalStatusRejected
	if CanAdvanceStage(stage) {
		t.Error("отклонённое согласование должно блокировать переход")
	}

	stage.Approvals[0].Status = models.ApprovalStatusApproved
	if !CanAdvanceStage(stage) {
		t.Error("при выполненных задачах и одобренных согласованиях переход разрешён")
	}
}

func TestNextStage(t *testing.T) {
	for i, stage := range models.StageOrder {
		want := ""
		if i+1 < len(models.StageOrder) {
			want = models.StageOrder[i+1]
		}
		if got := NextStage(stage); got != want {
			t.Errorf("после %q ожидался %q, получили %q", stage, want, got)
		}
	}
	if got := NextStage("ipo"); got != "" {
		t.Errorf("для неизвестного этапа ожидалась пустая строка, получили %q", got)
	}
}

func TestCurrentStageIndex(t *testing.T) {
	deal := &models.Deal{CurrentStage: models.StageOffer}
	for _, stage := range models.StageOrder {
		deal.Stages = append(deal.Stages, models.StageData{Stage: stage})
	}
	if got := CurrentStageIndex(deal); got != 2 {
		t.Errorf("ожидался индекс 2, получили %d", got)
	}

	deal.CurrentStage = "ipo"
	if got := CurrentStageIndex(deal); got != -1 {
		t.Errorf("для неизвестного этапа ожидался -1, получили %d", got)
	}
}

func TestCanUserCompleteTask(t *testing.T) {
	cases := []struct {
		owner string
		role  string
		want  bool
	}{
		{models.OwnerBoth, models.RoleBuyer, true},
		{models.OwnerBoth, models.RoleSeller, true},
		{models.OwnerBuyer, models.RoleBuyer, true},
		{models.OwnerBuyer, models.RoleSeller, false},
		{models.OwnerSeller, models.RoleSeller, true},
		{models.OwnerSeller, models.RoleBuyer, false},
	}
	for _, tc := range cases {
		item := &models.ChecklistItem{Owner: tc.owner}
		if got := CanUserCompleteTask(item, tc.role); got != tc.want {
			t.Errorf("ответственный %q, роль %q: ожидалось %v, получили %v", tc.owner, tc.role, tc.want, got)
		}
	}
}

func TestUnreadCommentCount(t *testing.T) {
	me := uuid.New()
	other := uuid.New()
	stage := &models.StageData{
		Comments: []models.StageComment{
			{AuthorID: other, IsPrivate: false},
			{AuthorID: other, IsPrivate: true},
			{AuthorID: me, IsPrivate: false},
			{AuthorID: other, IsPrivate: false},
		},
	}
	if got := UnreadCommentCount(stage, me); got != 2 {
		t.Errorf("ожидалось 2 непрочитанных комментария, получили %d", got)
	}
}
