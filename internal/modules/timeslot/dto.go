package timeslot

type CreateSlotRequest struct {
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Start           string `json:"start" validate:"required,datetime=15:04"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
	Note            string `json:"note"`
}

type BulkCreateSlotsRequest struct {
	DateFrom        string `json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo          string `json:"date_to" validate:"omitempty,datetime=2006-01-02"` // defaults to date_from
	StartTime       string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime         string `json:"end_time" validate:"required,datetime=15:04"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
	SkipWeekday     *int   `json:"skip_weekday" validate:"omitempty,min=0,max=6"` // 0=Sunday .. 6=Saturday
}
