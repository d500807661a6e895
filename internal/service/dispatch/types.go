package dispatch

import "time"

// TickReport summarizes one dispatch tick for the caller and the recorder.
type TickReport struct {
	RunID    string    `json:"run_id"`
	Kind     string    `json:"kind"`
	TickTime time.Time `json:"tick_time"`

	Evaluated        int `json:"evaluated"`
	ReservationsWon  int `json:"reservations_won"`
	ReservationsLost int `json:"reservations_lost"`
	Batches          int `json:"batches"`
	Sent             int `json:"sent"`
	Failed           int `json:"failed"`
	Retried          int `json:"retried"`
	Skipped          int `json:"skipped"`
}
