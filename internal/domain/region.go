package domain

// Region is one (code, name) pair read from a single level of the source
// catalog. It only lives for the duration of one traversal step.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// District is one entry of the final catalog. Province and City are only
// populated by a validating run, so a plain run serializes as {id, name}.
type District struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
}

// Catalog is the ordered list of districts in traversal order. Duplicate IDs
// are kept.
type Catalog []District

// Level is the depth of a node in the province -> city -> district hierarchy.
type Level int

const (
	LevelProvince Level = 1
	LevelCity     Level = 2
	LevelDistrict Level = 3
)

func (l Level) String() string {
	switch l {
	case LevelProvince:
		return "province"
	case LevelCity:
		return "city"
	case LevelDistrict:
		return "district"
	default:
		return "unknown"
	}
}
