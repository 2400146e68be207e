package optimizer

import "context"

// Location is a geographic coordinate pair.
type Location struct {
	Latitude  float64
	Longitude float64
}

// TravelMethod selects the mode of transport for travel estimates.
type TravelMethod string

const (
	TravelDriving TravelMethod = "driving"
	TravelWalking TravelMethod = "walking"
	TravelTransit TravelMethod = "transit"
)

// WeatherDay is a single day of forecast data from the location collaborator.
type WeatherDay struct {
	Date            string
	TempC           float64
	PrecipitationMM float64
	Summary         string
}

// LocationService is the external routing/weather collaborator. Any error
// it returns is treated as "use fallback", never as fatal.
type LocationService interface {
	// EstimateTravel returns the travel fact between two coordinates.
	EstimateTravel(ctx context.Context, from, to Location, method TravelMethod) (TravelFact, error)

	// ForecastWeather returns up to days of forecast for a location.
	ForecastWeather(ctx context.Context, loc Location, days int) ([]WeatherDay, error)
}
