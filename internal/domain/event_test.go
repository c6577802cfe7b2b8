package domain

import (
	"testing"
	"time"
)

func TestEventDrawStatus(t *testing.T) {
	drawTime := time.Date(2026, 12, 20, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		scheduled     *time.Time
		drawn         *time.Time
		wantStatus    string
		wantDrawn     bool
		wantScheduled bool
	}{
		{
			name:       "fresh event",
			wantStatus: DrawStatusNotStarted,
		},
		{
			name:          "scheduled",
			scheduled:     &drawTime,
			wantStatus:    DrawStatusScheduled,
			wantScheduled: true,
		},
		{
			name:       "drawn manually",
			drawn:      &drawTime,
			wantStatus: DrawStatusDrawn,
			wantDrawn:  true,
		},
		{
			name:       "drawn event keeps its old schedule timestamp",
			scheduled:  &drawTime,
			drawn:      &drawTime,
			wantStatus: DrawStatusDrawn,
			wantDrawn:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Event{ScheduledDrawAt: tt.scheduled, DrawnAt: tt.drawn}
			if got := e.DrawStatus(); got != tt.wantStatus {
				t.Errorf("DrawStatus() = %q, want %q", got, tt.wantStatus)
			}
			if got := e.IsDrawn(); got != tt.wantDrawn {
				t.Errorf("IsDrawn() = %v, want %v", got, tt.wantDrawn)
			}
			if got := e.IsScheduled(); got != tt.wantScheduled {
				t.Errorf("IsScheduled() = %v, want %v", got, tt.wantScheduled)
			}
		})
	}
}
