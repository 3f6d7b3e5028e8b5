package reports

// The work-data heuristic mirrors the HR team's spreadsheet: every approved
// request counts as two days regardless of its actual span, against a 20
// work-day month at 8 hours per day.
const (
	daysPerApprovedRequest = 2
	monthlyWorkDays        = 20
	hoursPerWorkDay        = 8
)

// UserApprovals is one user's approved request counts, bucketed by kind.
type UserApprovals struct {
	Name             string
	VacationRequests int
	LeaveRequests    int
}

type WorkData struct {
	Name        string `json:"name"`
	HolidayDays int    `json:"holidayDays"`
	LeaveDays   int    `json:"leaveDays"`
	WorkDays    int    `json:"workDays"`
	WorkHours   int    `json:"workHours"`
}

// Compute derives the per-user work-data rows. It is the single source for
// both the JSON report and the PDF export.
func Compute(users []UserApprovals) []WorkData {
	out := make([]WorkData, 0, len(users))
	for _, user := range users {
		holidayDays := user.VacationRequests * daysPerApprovedRequest
		leaveDays := user.LeaveRequests * daysPerApprovedRequest

		workDays := monthlyWorkDays - (holidayDays + leaveDays)
		if workDays < 0 {
			workDays = 0
		}

		out = append(out, WorkData{
			Name:        user.Name,
			HolidayDays: holidayDays,
			LeaveDays:   leaveDays,
			WorkDays:    workDays,
			WorkHours:   workDays * hoursPerWorkDay,
		})
	}
	return out
}
