package ctdf

// UmbrellaProbabilityThreshold is the precipitation chance above which an umbrella is suggested
const UmbrellaProbabilityThreshold = 40

type ArrivalWeather struct {
	IsRaining                bool    `json:"isRaining" groups:"basic,detailed"`
	PrecipitationProbability int     `json:"precipitationProbability" groups:"basic,detailed"`
	PrecipitationMm          float64 `json:"precipitationMm" groups:"basic,detailed"`
	Description              string  `json:"description" groups:"basic,detailed"`
	WeatherCode              int     `json:"weatherCode" groups:"detailed"`
	ShouldBringUmbrella      bool    `json:"shouldBringUmbrella" groups:"basic,detailed"`
}

func NewArrivalWeather(precipitationProbability int, precipitationMm float64, weatherCode int) ArrivalWeather {
	isRaining := IsRainyWeatherCode(weatherCode)

	return ArrivalWeather{
		IsRaining:                isRaining,
		PrecipitationProbability: precipitationProbability,
		PrecipitationMm:          precipitationMm,
		Description:              WeatherCodeDescription(weatherCode),
		WeatherCode:              weatherCode,
		ShouldBringUmbrella:      precipitationProbability > UmbrellaProbabilityThreshold || isRaining,
	}
}

// WeatherCodeDescription maps a WMO weather code to text
func WeatherCodeDescription(code int) string {
	switch code {
	case 0:
		return "Clear sky"
	case 1:
		return "Mainly clear"
	case 2:
		return "Partly cloudy"
	case 3:
		return "Overcast"
	case 45, 48:
		return "Foggy"
	case 51:
		return "Light drizzle"
	case 53:
		return "Moderate drizzle"
	case 55:
		return "Dense drizzle"
	case 56, 57:
		return "Freezing drizzle"
	case 61:
		return "Light rain"
	case 63:
		return "Moderate rain"
	case 65:
		return "Heavy rain"
	case 66, 67:
		return "Freezing rain"
	case 71:
		return "Light snow"
	case 73:
		return "Moderate snow"
	case 75:
		return "Heavy snow"
	case 77:
		return "Snow grains"
	case 80:
		return "Light rain showers"
	case 81:
		return "Moderate rain showers"
	case 82:
		return "Heavy rain showers"
	case 85, 86:
		return "Snow showers"
	case 95:
		return "Thunderstorm"
	case 96, 99:
		return "Thunderstorm with hail"
	default:
		return "Unknown"
	}
}

func IsRainyWeatherCode(code int) bool {
	switch code {
	case 51, 53, 55, 56, 57, 61, 63, 65, 66, 67, 80, 81, 82, 95, 96, 99:
		return true
	default:
		return false
	}
}
