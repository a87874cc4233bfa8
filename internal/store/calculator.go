package store

import (
	"database/sql"
	"fmt"
)

// CalculatorData holds the capacity-calculator inputs. One row per store.
type CalculatorData struct {
	NumClients        int     `json:"numClients"`
	MeetingsPerClient int     `json:"meetingsPerClient"`
	MinutesPerMeeting int     `json:"minutesPerMeeting"`
	WorkDaysPerWeek   int     `json:"workDaysPerWeek"`
	WeeksPerYear      int     `json:"weeksPerYear"`
	HoursPerDay       float64 `json:"hoursPerDay"`
	StartHour         int     `json:"startHour"`
	EndHour           int     `json:"endHour"`
	Notes             string  `json:"notes,omitempty"`
}

// DefaultCalculator mirrors the app's initial calculator state.
var DefaultCalculator = CalculatorData{
	NumClients:        50,
	MeetingsPerClient: 2,
	MinutesPerMeeting: 60,
	WorkDaysPerWeek:   5,
	WeeksPerYear:      48,
	HoursPerDay:       8,
	StartHour:         9,
	EndHour:           17,
}

// GetCalculator loads the calculator inputs, returning defaults when none
// have been saved yet.
func (s *LocalStore) GetCalculator() (CalculatorData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var d CalculatorData
	err := s.db.QueryRow(
		`SELECT num_clients, meetings_per_client, minutes_per_meeting, work_days_per_week,
			weeks_per_year, hours_per_day, start_hour, end_hour, notes
		 FROM calculator WHERE id = 1`,
	).Scan(&d.NumClients, &d.MeetingsPerClient, &d.MinutesPerMeeting, &d.WorkDaysPerWeek,
		&d.WeeksPerYear, &d.HoursPerDay, &d.StartHour, &d.EndHour, &d.Notes)
	if err == sql.ErrNoRows {
		return DefaultCalculator, nil
	}
	if err != nil {
		return CalculatorData{}, fmt.Errorf("failed to load calculator: %w", err)
	}
	return d, nil
}

// PutCalculator rewrites the calculator inputs.
func (s *LocalStore) PutCalculator(d CalculatorData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO calculator (id, num_clients, meetings_per_client, minutes_per_meeting,
			work_days_per_week, weeks_per_year, hours_per_day, start_hour, end_hour, notes)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			num_clients = excluded.num_clients,
			meetings_per_client = excluded.meetings_per_client,
			minutes_per_meeting = excluded.minutes_per_meeting,
			work_days_per_week = excluded.work_days_per_week,
			weeks_per_year = excluded.weeks_per_year,
			hours_per_day = excluded.hours_per_day,
			start_hour = excluded.start_hour,
			end_hour = excluded.end_hour,
			notes = excluded.notes`,
		d.NumClients, d.MeetingsPerClient, d.MinutesPerMeeting, d.WorkDaysPerWeek,
		d.WeeksPerYear, d.HoursPerDay, d.StartHour, d.EndHour, d.Notes)
	if err != nil {
		return fmt.Errorf("failed to store calculator: %w", err)
	}
	return nil
}

// MeetingHoursPerYear derives total client-meeting hours from the inputs.
func (d CalculatorData) MeetingHoursPerYear() float64 {
	return float64(d.NumClients*d.MeetingsPerClient*d.MinutesPerMeeting) / 60.0
}

// WorkHoursPerYear derives total working hours from the inputs.
func (d CalculatorData) WorkHoursPerYear() float64 {
	return float64(d.WorkDaysPerWeek*d.WeeksPerYear) * d.HoursPerDay
}
