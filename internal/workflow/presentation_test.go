package workflow

import (
	"testing"

	"github.com/bizbridge/acquisition-backend/internal/models"
)

func TestProgressColor(t *testing.T) {
	cases := []struct {
		progress int
		want     string
	}{
		{100, "success"},
		{80, "success"},
		{79, "primary"},
		{50, "primary"},
		{49, "warning"},
		{25, "warning"},
		{24, "error"},
		{0, "error"},
	}
	for _, tc := range cases {
		if got := ProgressColor(tc.progress); got != tc.want {
			t.Errorf("прогресс %d: ожидался цвет %q, получили %q", tc.progress, tc.want, got)
		}
	}
}

func TestStatusView(t *testing.T) {
	cases := []struct {
		status string
		want   StageStatusView
	}{
		{models.StageStatusCompleted, StageStatusView{Icon: "check-circle", Color: "success"}},
		{models.StageStatusInProgress, StageStatusView{Icon: "clock", Color: "primary"}},
		{models.StageStatusBlocked, StageStatusView{Icon: "alert-circle", Color: "error"}},
		{models.StageStatusPending, StageStatusView{Icon: "circle", Color: "default"}},
		{"unknown", StageStatusView{Icon: "circle", Color: "default"}},
	}
	for _, tc := range cases {
		if got := StatusView(tc.status); got != tc.want {
			t.Errorf("статус %q: ожидалось %+v, получили %+v", tc.status, tc.want, got)
		}
	}
}
