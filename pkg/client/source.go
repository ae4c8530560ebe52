package client

import (
	"context"
	"time"

	"github.com/aldoetobex/council-case-backend/pkg/calendar"
	"github.com/aldoetobex/council-case-backend/pkg/models"
)

// MeetingSource reads one kind's meetings through the API.
type MeetingSource struct {
	client *Client
	kind   models.CaseKind
}

func (c *Client) MeetingSource(kind models.CaseKind) *MeetingSource {
	return &MeetingSource{client: c, kind: kind}
}

func (s *MeetingSource) Kind() models.CaseKind { return s.kind }

func (s *MeetingSource) Fetch(ctx context.Context, w calendar.Window) ([]calendar.SourceMeeting, error) {
	return s.client.Meetings(ctx, s.kind, w.From(), w.To())
}

// LocalSchedule fetches marriage and reconciliation meetings separately and
// merges them on this side. One failing feed only adds a warning.
func (c *Client) LocalSchedule(ctx context.Context, view calendar.View, anchor time.Time, loc *time.Location) *calendar.Schedule {
	agg := calendar.NewAggregator(c.log,
		c.MeetingSource(models.KindMarriage),
		c.MeetingSource(models.KindReconciliation),
	)
	if loc != nil {
		agg.Location = loc
	}
	return agg.Build(ctx, view, anchor)
}

var _ calendar.Source = (*MeetingSource)(nil)
