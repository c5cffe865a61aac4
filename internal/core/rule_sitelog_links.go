package core

import (
	"context"
	"fmt"

	"obracore/pkg/domain"
)

// NewSiteLogLinksRule returns the blocking rule enforcing that site log
// children reference an existing site log and that attendees reference
// existing contacts.
func NewSiteLogLinksRule() domain.Rule {
	return siteLogLinksRule{}
}

type siteLogLinksRule struct{}

func (siteLogLinksRule) Name() string { return "sitelog_links" }

func (siteLogLinksRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	block := func(entity domain.EntityType, id, msg string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "sitelog_links",
			Severity: domain.SeverityBlock,
			Message:  msg,
			Entity:   entity,
			EntityID: id,
		})
	}
	for _, task := range view.ListSiteLogTasks() {
		if _, ok := view.FindSiteLog(task.SiteLogID); !ok {
			block(domain.EntitySiteLogTask, task.ID, fmt.Sprintf("site log task %s references missing site log %s", task.ID, task.SiteLogID))
		}
	}
	for _, attendee := range view.ListSiteLogAttendees() {
		if _, ok := view.FindSiteLog(attendee.SiteLogID); !ok {
			block(domain.EntitySiteLogAttendee, attendee.ID, fmt.Sprintf("attendee %s references missing site log %s", attendee.ID, attendee.SiteLogID))
		}
		if _, ok := view.FindContact(attendee.ContactID); !ok {
			block(domain.EntitySiteLogAttendee, attendee.ID, fmt.Sprintf("attendee %s references missing contact %s", attendee.ID, attendee.ContactID))
		}
	}
	for _, file := range view.ListSiteLogFiles() {
		if _, ok := view.FindSiteLog(file.SiteLogID); !ok {
			block(domain.EntitySiteLogFile, file.ID, fmt.Sprintf("site log file %s references missing site log %s", file.ID, file.SiteLogID))
		}
	}
	return res, nil
}
