package weather

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Snapshot is the normalized result of one successful query.
// It is immutable once built and replaced wholesale by the next success.
type Snapshot struct {
	LocationName         string  `json:"locationName"`
	CountryCode          string  `json:"countryCode"`
	TemperatureC         float64 `json:"temperatureC"`
	FeelsLikeC           float64 `json:"feelsLikeC"`
	HumidityPct          int     `json:"humidityPct" validate:"min=0,max=100"`
	WindSpeedMps         float64 `json:"windSpeedMps" validate:"gte=0"`
	ConditionLabel       string  `json:"conditionLabel"`
	ConditionDescription string  `json:"conditionDescription"`
}

// Validate checks the snapshot invariants: finite numbers, humidity within
// [0,100] and a non-negative wind speed.
func (s Snapshot) Validate() error {
	numbers := []struct {
		name  string
		value float64
	}{
		{"temperature", s.TemperatureC},
		{"feels_like", s.FeelsLikeC},
		{"wind speed", s.WindSpeedMps},
	}
	for _, n := range numbers {
		if math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			return fmt.Errorf("%s is not a finite number", n.name)
		}
	}
	return validate.Struct(s)
}
