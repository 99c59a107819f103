package bansos

import "github.com/wilayah-id/crawler/internal/entities"

// levelSpec describes how to query one hierarchy level: the endpoint path and
// the form keys carrying the ancestor codes, outermost first.
type levelSpec struct {
	endpoint string
	params   []string
}

var levelSpecs = map[entities.Level]levelSpec{
	entities.LevelProvince: {endpoint: "provinsi"},
	entities.LevelCity:     {endpoint: "kabupaten", params: []string{"kdprop"}},
	entities.LevelDistrict: {endpoint: "kecamatan", params: []string{"kdprop", "kdkab"}},
	entities.LevelVillage:  {endpoint: "desa", params: []string{"kdprop", "kdkab", "kdkec"}},
}
