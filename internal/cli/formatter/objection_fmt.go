package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
)

// FormatObjections lists objections newest last.
func FormatObjections(objs []*domain.Objection) string {
	rows := make([][]string, 0, len(objs))
	for _, o := range objs {
		rows = append(rows, []string{
			ShortID(o.ID),
			string(o.Type),
			requestSummary(o),
			o.RequestedBy,
			ObjectionStatus(o.Status),
			o.RespondedBy,
		})
	}
	return RenderTable([]string{"ID", "TYPE", "REQUEST", "BY", "STATUS", "RESPONDER"}, rows)
}

// FormatObjection renders a single objection in detail.
func FormatObjection(o *domain.Objection) string {
	var b strings.Builder
	b.WriteString(Header("objection " + ShortID(o.ID)))
	b.WriteString("\n")
	line := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%-10s %s\n", Dim(k), v)
		}
	}
	line("target", fmt.Sprintf("%s %s", o.TargetKind, o.TargetID))
	line("type", string(o.Type))
	line("request", requestSummary(o))
	line("remarks", o.Remarks)
	line("raised", fmt.Sprintf("%s on %s", o.RequestedBy, o.RequestedAt.Format(time.DateTime)))
	line("status", ObjectionStatus(o.Status))
	if o.RespondedAt != nil {
		line("responded", fmt.Sprintf("%s on %s", o.RespondedBy, o.RespondedAt.Format(time.DateTime)))
	}
	line("note", o.ApprovalRemarks)
	if o.Type == domain.ObjectionDateChange && o.Status == domain.ObjectionApproved {
		impact := "counts toward on-time score"
		if o.Excuses() {
			impact = "excused from on-time score"
		}
		line("scoring", impact)
	}
	return b.String()
}

func requestSummary(o *domain.Objection) string {
	if o.Type != domain.ObjectionDateChange || o.RequestedDate == nil {
		return ""
	}
	s := o.RequestedDate.Format(domain.DateLayout)
	if o.ExtraDaysRequested != nil {
		s += fmt.Sprintf(" (%+dd)", *o.ExtraDaysRequested)
	}
	return s
}
