package service

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"taskmesh/internal/view"
)

// DigestService builds human-readable summaries of a user's effective
// task view for scheduled notifications.
type DigestService struct {
	controller *Controller
}

func NewDigestService(controller *Controller) *DigestService {
	return &DigestService{controller: controller}
}

// Daily renders the digest for the controller's current view.
func (s *DigestService) Daily(now time.Time) string {
	return BuildDigest(s.controller.CurrentView(), now)
}

// BuildDigest renders a digest from effective views: overdue tasks first,
// then tasks due within 48 hours, then the remaining open tasks. Done
// tasks are left out.
func BuildDigest(views []view.EffectiveTaskView, now time.Time) string {
	var overdue, dueSoon, open []view.EffectiveTaskView
	for _, v := range views {
		switch {
		case v.Status == view.EffectiveDone:
			continue
		case v.Status == view.EffectiveOverdue:
			overdue = append(overdue, v)
		case v.DueDate != nil && v.DueDate.Sub(now) <= 48*time.Hour:
			dueSoon = append(dueSoon, v)
		default:
			open = append(open, v)
		}
	}
	sortByDeadline(overdue)
	sortByDeadline(dueSoon)
	sortByDeadline(open)

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily task digest</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	builder.WriteString("⚠️ <b>Overdue</b>\n")
	if len(overdue) == 0 {
		builder.WriteString("— nothing overdue\n")
	} else {
		for _, v := range overdue {
			builder.WriteString(formatView(v, now))
		}
	}

	builder.WriteString("\n⏳ <b>Due soon</b>\n")
	if len(dueSoon) == 0 {
		builder.WriteString("— nothing due within 48 hours\n")
	} else {
		for _, v := range dueSoon {
			builder.WriteString(formatView(v, now))
		}
	}

	builder.WriteString("\n🟢 <b>Open</b>\n")
	if len(open) == 0 {
		builder.WriteString("— no other open tasks\n")
	} else {
		for _, v := range open {
			builder.WriteString(formatView(v, now))
		}
	}

	return strings.TrimSpace(builder.String())
}

// sortByDeadline orders by due date ascending, tasks without a due date
// last, newest created first among those.
func sortByDeadline(views []view.EffectiveTaskView) {
	sort.SliceStable(views, func(i, j int) bool {
		switch {
		case views[i].DueDate == nil && views[j].DueDate == nil:
			return views[i].CreatedAt.After(views[j].CreatedAt)
		case views[i].DueDate == nil:
			return false
		case views[j].DueDate == nil:
			return true
		default:
			return views[i].DueDate.Before(*views[j].DueDate)
		}
	})
}

func formatView(v view.EffectiveTaskView, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("• %s", html.EscapeString(strings.TrimSpace(v.Title))))
	sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(v.Creator.Name())))

	if v.DueDate != nil {
		d := v.DueDate.In(now.Location())
		if now.After(d) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ was due %s", d.Format("2006-01-02")))
		} else {
			daysLeft := int(d.Sub(now).Hours()/24) + 1
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · ≈%d day(s) left", d.Format("2006-01-02"), daysLeft))
		}
	}

	if len(v.Comments) > 0 {
		sb.WriteString(fmt.Sprintf("\n   💬 %d comment(s), last by %s", len(v.Comments), html.EscapeString(v.Comments[0].AuthorName)))
	}

	sb.WriteByte('\n')
	return sb.String()
}
