package pricing

import "github.com/eleqt/eleqt-rides/internal/domain"

// Max luggage per passenger count, per class. A passenger count missing from
// the map means the class cannot take that many passengers at all.
var classRules = map[domain.VehicleClass]map[int]int{
	domain.ThreeSeater: {1: 3, 2: 3, 3: 2},
	domain.FiveSeater:  {1: 5, 2: 5, 3: 4, 4: 3, 5: 2},
}

// Classify maps passenger and luggage counts to the smallest vehicle class
// that can take them. The 3-seater wins whenever it qualifies.
func Classify(passengers, luggage int) (domain.VehicleClass, error) {
	if max, ok := classRules[domain.ThreeSeater][passengers]; ok && luggage <= max {
		return domain.ThreeSeater, nil
	}
	if max, ok := classRules[domain.FiveSeater][passengers]; ok && luggage <= max {
		return domain.FiveSeater, nil
	}
	return "", domain.ErrNoSuitableVehicle
}
