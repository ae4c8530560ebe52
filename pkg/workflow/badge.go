package workflow

import (
	"strings"

	"github.com/aldoetobex/council-case-backend/pkg/models"
)

// Badge is the display style of an enum value: tailwind classes for the web
// portals and a hex color for terminals.
type Badge struct {
	Label      string `json:"label"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Color      string `json:"color"`
}

func badge(label, tone, hex string) Badge {
	return Badge{
		Label:      label,
		Background: "bg-" + tone + "-100",
		Text:       "text-" + tone + "-800",
		Color:      hex,
	}
}

func neutralBadge(label string) Badge {
	if label == "" {
		label = "Unknown"
	}
	return badge(label, "gray", "#6B7280")
}

var statusBadges = map[models.CaseStatus]Badge{
	models.CasePending:    badge("Pending", "yellow", "#CA8A04"),
	models.CaseAssigned:   badge("Assigned", "blue", "#2563EB"),
	models.CaseInProgress: badge("In Progress", "purple", "#9333EA"),
	models.CaseResolved:   badge("Resolved", "green", "#16A34A"),
	models.CaseUnresolved: badge("Unresolved", "orange", "#EA580C"),
	models.CaseCancelled:  badge("Cancelled", "red", "#DC2626"),
}

var meetingBadges = map[models.MeetingStatus]Badge{
	models.MeetingScheduled:   badge("Scheduled", "blue", "#2563EB"),
	models.MeetingCompleted:   badge("Completed", "green", "#16A34A"),
	models.MeetingCancelled:   badge("Cancelled", "red", "#DC2626"),
	models.MeetingRescheduled: badge("Rescheduled", "yellow", "#CA8A04"),
}

var priorityBadges = map[models.Priority]Badge{
	models.PriorityLow:    badge("Low", "green", "#16A34A"),
	models.PriorityMedium: badge("Medium", "yellow", "#CA8A04"),
	models.PriorityHigh:   badge("High", "orange", "#EA580C"),
	models.PriorityUrgent: badge("Urgent", "red", "#DC2626"),
}

// StatusBadge never fails: unknown statuses get the gray style.
func StatusBadge(s models.CaseStatus) Badge {
	return RuleFor(models.CaseStatus(strings.ToLower(string(s)))).Badge
}

func MeetingBadge(s models.MeetingStatus) Badge {
	if b, ok := meetingBadges[models.MeetingStatus(strings.ToLower(string(s)))]; ok {
		return b
	}
	return neutralBadge(string(s))
}

func PriorityBadge(p models.Priority) Badge {
	if b, ok := priorityBadges[models.Priority(strings.ToLower(string(p)))]; ok {
		return b
	}
	return neutralBadge(string(p))
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p models.Priority) bool {
	_, ok := priorityBadges[p]
	return ok
}
