package domain

import (
	"fmt"
	"strings"
)

// ProvinceListURL returns the level 1 list endpoint under base.
func ProvinceListURL(base string) string {
	return fmt.Sprintf("%s/city.xml?level=%d", trimBase(base), LevelProvince)
}

// CityListURL returns the level 2 list endpoint for a province.
func CityListURL(base, provinceCode string) string {
	return fmt.Sprintf("%s/city%s.xml?level=%d", trimBase(base), provinceCode, LevelCity)
}

// DistrictListURL returns the level 3 list endpoint for a city.
func DistrictListURL(base, cityCode string) string {
	return fmt.Sprintf("%s/city%s.xml?level=%d", trimBase(base), cityCode, LevelDistrict)
}

func trimBase(base string) string {
	return strings.TrimRight(base, "/")
}
