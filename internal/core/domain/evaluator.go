package domain

// DeliveryEvaluator decides whether a coordinate is close enough to the
// destination to declare delivery. Each call site configures its own
// threshold.
type DeliveryEvaluator struct {
	ThresholdKm float64
}

// Evaluation is the outcome of a single proximity check.
type Evaluation struct {
	DistanceKm  float64
	Current     ShipmentStatus
	Recommended ShipmentStatus
}

// Changed reports whether the recommendation differs from the current status.
func (e Evaluation) Changed() bool {
	return e.Recommended != e.Current
}

// Evaluate recommends Delivered when position is within the threshold
// (inclusive) and InTransit otherwise. Delivered and Cancelled are never
// overridden.
func (e DeliveryEvaluator) Evaluate(position, destination Coordinates, current ShipmentStatus) Evaluation {
	res := Evaluation{
		DistanceKm:  position.DistanceTo(destination),
		Current:     current,
		Recommended: current,
	}

	switch current {
	case StatusDelivered, StatusCancelled:
		return res
	}

	if res.DistanceKm <= e.ThresholdKm {
		res.Recommended = StatusDelivered
	} else {
		res.Recommended = StatusInTransit
	}
	return res
}
