package weather

import (
	"math"
	"strconv"
)

// MetricCard is one of the four metric tiles of the widget.
type MetricCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DisplayModel is what the rendering layer shows for a successful lookup.
type DisplayModel struct {
	Location     string            `json:"location"`
	Country      string            `json:"country"`
	Category     ConditionCategory `json:"category"`
	Icon         string            `json:"icon"`
	Description  string            `json:"description"`
	TemperatureC int               `json:"temperatureC"`
	FeelsLikeC   int               `json:"feelsLikeC"`
	HumidityPct  int               `json:"humidityPct"`
	WindSpeedMps float64           `json:"windSpeedMps"`
	Cards        []MetricCard      `json:"cards"`
}

// Present projects a state onto the display model. It reports false for
// every state other than Success.
//
// Temperatures are rounded half away from zero; humidity and wind speed are
// passed through as the provider reported them.
func Present(state State) (DisplayModel, bool) {
	success, ok := state.(Success)
	if !ok {
		return DisplayModel{}, false
	}
	snap := success.Snapshot

	category := Classify(snap.ConditionLabel)
	temp := int(math.Round(snap.TemperatureC))
	feels := int(math.Round(snap.FeelsLikeC))

	return DisplayModel{
		Location:     snap.LocationName,
		Country:      snap.CountryCode,
		Category:     category,
		Icon:         category.Icon(),
		Description:  snap.ConditionDescription,
		TemperatureC: temp,
		FeelsLikeC:   feels,
		HumidityPct:  snap.HumidityPct,
		WindSpeedMps: snap.WindSpeedMps,
		Cards: []MetricCard{
			{Label: "Temperature", Value: strconv.Itoa(temp) + "°C"},
			{Label: "Feels Like", Value: strconv.Itoa(feels) + "°C"},
			{Label: "Humidity", Value: strconv.Itoa(snap.HumidityPct) + "%"},
			{Label: "Wind Speed", Value: strconv.FormatFloat(snap.WindSpeedMps, 'f', -1, 64) + " m/s"},
		},
	}, true
}
