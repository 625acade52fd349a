package models

// VehicleClass is one entry in the static congestion-pricing class table.
// Class 7 (subway) carries no toll and is excluded from volume synthesis.
type VehicleClass struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	PeakFee      float64 `json:"peak_fee"`
	OvernightFee float64 `json:"overnight_fee"`
	// Multiplier scales synthetic entry volumes relative to class 1 (cars).
	Multiplier float64 `json:"multiplier"`
}
