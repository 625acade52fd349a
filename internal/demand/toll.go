package demand

import "congestion-pulse/internal/models"

// classes is the static congestion-pricing table. Multipliers scale synthetic
// entry volumes relative to class 1; fees are per-entry in dollars.
var classes = []models.VehicleClass{
	{ID: 1, Name: "Cars, Pickups and Vans", PeakFee: 9.00, OvernightFee: 2.25, Multiplier: 1.00},
	{ID: 2, Name: "Single-Unit Trucks", PeakFee: 14.40, OvernightFee: 3.60, Multiplier: 0.15},
	{ID: 3, Name: "Multi-Unit Trucks", PeakFee: 21.60, OvernightFee: 5.40, Multiplier: 0.08},
	{ID: 4, Name: "Buses", PeakFee: 14.40, OvernightFee: 3.60, Multiplier: 0.05},
	{ID: 5, Name: "Motorcycles", PeakFee: 4.50, OvernightFee: 1.10, Multiplier: 0.04},
	{ID: 6, Name: "Taxi and FHV", PeakFee: 3.60, OvernightFee: 0.90, Multiplier: 0.45},
	{ID: 7, Name: "Subway", PeakFee: 0, OvernightFee: 0, Multiplier: 0},
}

// Classes returns the full class table in id order.
func Classes() []models.VehicleClass {
	out := make([]models.VehicleClass, len(classes))
	copy(out, classes)
	return out
}

// TollableClasses returns classes 1-6; the subway is never tolled.
func TollableClasses() []models.VehicleClass {
	out := make([]models.VehicleClass, 0, len(classes)-1)
	for _, c := range classes {
		if c.ID != SubwayClassID {
			out = append(out, c)
		}
	}
	return out
}

// SubwayClassID is the pseudo-class for subway ridership data.
const SubwayClassID = 7

// ClassByID looks up a vehicle class. The second return is false for unknown
// ids; callers fail open with a zero fee but should log the id as a
// data-quality signal.
func ClassByID(id int) (models.VehicleClass, bool) {
	for _, c := range classes {
		if c.ID == id {
			return c, true
		}
	}
	return models.VehicleClass{}, false
}

// TollFee maps (class, peak) to a fee. Unknown ids return 0 rather than an
// error so an unrecognized id coming off the wire can never take down a
// render.
func TollFee(classID int, peak bool) float64 {
	c, ok := ClassByID(classID)
	if !ok {
		return 0
	}
	if peak {
		return c.PeakFee
	}
	return c.OvernightFee
}
