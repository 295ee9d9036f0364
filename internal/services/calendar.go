package services

import (
	"strings"

	ical "github.com/arran4/golang-ical"

	"choreboard/internal/models"
)

// BuildChoreCalendar renders a family's dated chores as an iCal feed of
// all-day events, for subscription from external calendar apps. Chores with no
// due date are skipped.
func BuildChoreCalendar(family models.Family, chores []models.ChoreWithAssignee) string {
	calendar := ical.NewCalendar()
	calendar.SetMethod(ical.MethodPublish)
	calendar.SetProductId("-//Choreboard//Choreboard//EN")
	calendar.SetXWRCalName(family.Name + " Chores")

	for _, chore := range chores {
		if chore.DueDate == nil {
			continue
		}

		event := calendar.AddEvent(chore.ID + "@choreboard")
		event.SetSummary(chore.Title)
		event.SetAllDayStartAt(*chore.DueDate)
		event.SetAllDayEndAt(chore.DueDate.AddDate(0, 0, 1))
		event.SetDtStampTime(chore.CreatedAt)

		var details []string
		if chore.Description != "" {
			details = append(details, chore.Description)
		}
		if chore.Assignee != nil {
			details = append(details, "Assigned to: "+chore.Assignee.Name)
		}
		details = append(details, "Status: "+string(chore.Status))
		event.SetDescription(strings.Join(details, "\n"))
	}

	return calendar.Serialize()
}
