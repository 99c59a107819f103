package entities

import "time"

// Document is the single output artifact of a crawl. The JSON field names,
// including "total_cities/regencies", are a published contract and must not
// change.
type Document struct {
	Metadata  Metadata  `json:"metadata"`
	Hierarchy Hierarchy `json:"hierarchy"`
}

type Metadata struct {
	Timestamp  string     `json:"timestamp"`
	Source     string     `json:"source"`
	Statistics Statistics `json:"statistics"`
}

type Statistics struct {
	TotalProvinces int `json:"total_provinces"`
	TotalCities    int `json:"total_cities/regencies"`
	TotalDistricts int `json:"total_districts"`
	TotalVillages  int `json:"total_villages"`
}

type Hierarchy struct {
	Provinces []Province `json:"provinces"`
}

type Province struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	TotalCities int    `json:"total_cities/regencies"`
	Cities      []City `json:"cities"`
}

type City struct {
	Code           string     `json:"code"`
	Name           string     `json:"name"`
	TotalDistricts int        `json:"total_districts"`
	Districts      []District `json:"districts"`
}

type District struct {
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	TotalVillages int       `json:"total_villages"`
	Villages      []Village `json:"villages"`
}

type Village struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func NewDocument(source string) *Document {
	return &Document{
		Metadata: Metadata{
			Timestamp: time.Now().Format(time.RFC3339),
			Source:    source,
		},
		Hierarchy: Hierarchy{Provinces: []Province{}},
	}
}

// Aggregate recomputes every per-node count and the root statistics from the
// children actually present in the tree. Counts reported by the remote source
// are never trusted.
func (d *Document) Aggregate() {
	stats := Statistics{TotalProvinces: len(d.Hierarchy.Provinces)}

	for pi := range d.Hierarchy.Provinces {
		province := &d.Hierarchy.Provinces[pi]
		province.TotalCities = len(province.Cities)
		stats.TotalCities += province.TotalCities

		for ci := range province.Cities {
			city := &province.Cities[ci]
			city.TotalDistricts = len(city.Districts)
			stats.TotalDistricts += city.TotalDistricts

			for di := range city.Districts {
				district := &city.Districts[di]
				district.TotalVillages = len(district.Villages)
				stats.TotalVillages += district.TotalVillages
			}
		}
	}

	d.Metadata.Statistics = stats
}

func NewProvince(region Region) Province {
	return Province{Code: region.Code, Name: region.Name, Cities: []City{}}
}

func NewCity(region Region) City {
	return City{Code: region.Code, Name: region.Name, Districts: []District{}}
}

func NewDistrict(region Region) District {
	return District{Code: region.Code, Name: region.Name, Villages: []Village{}}
}

func NewVillage(region Region) Village {
	return Village{Code: region.Code, Name: region.Name}
}
