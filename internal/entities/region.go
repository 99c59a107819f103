package entities

// Level identifies one of the four tiers of the administrative hierarchy.
type Level string

const (
	LevelProvince Level = "province"
	LevelCity     Level = "city"
	LevelDistrict Level = "district"
	LevelVillage  Level = "village"
)

func (l Level) String() string {
	return string(l)
}

// Region is a single {code, name} pair as returned by the remote directory.
// Codes are opaque and unique only within one parent's scope.
type Region struct {
	Code string
	Name string
}

// DedupeByCode collapses duplicate codes within one parent's scope.
// The first occurrence keeps its position, the last occurrence wins the value.
func DedupeByCode(regions []Region) []Region {
	out := make([]Region, 0, len(regions))
	seen := make(map[string]int, len(regions))
	for _, region := range regions {
		if i, ok := seen[region.Code]; ok {
			out[i] = region
			continue
		}
		seen[region.Code] = len(out)
		out = append(out, region)
	}
	return out
}
