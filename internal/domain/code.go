package domain

// WeatherCodePrefix is the country prefix the weather services put in front
// of an area code.
const WeatherCodePrefix = "101"

// BuildWeatherCode maps a district area code to its weather code, e.g.
// "220607" -> "101220607". The input is not validated.
func BuildWeatherCode(areaCode string) string {
	return WeatherCodePrefix + areaCode
}
