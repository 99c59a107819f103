package entities

import (
	"encoding/json"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocument() *Document {
	doc := NewDocument("cekbansos.kemensos.go.id")
	doc.Hierarchy.Provinces = []Province{
		{
			Code: "11", Name: "ACEH",
			Cities: []City{
				{
					Code: "1101", Name: "KAB. ACEH SELATAN",
					Districts: []District{
						{Code: "110101", Name: "BAKONGAN", Villages: []Village{
							{Code: "1101012001", Name: "KEUDE BAKONGAN"},
							{Code: "1101012002", Name: "UJONG MANGKI"},
						}},
						{Code: "110102", Name: "KLUET UTARA", Villages: []Village{}},
					},
				},
				{Code: "1171", Name: "KOTA BANDA ACEH", Districts: []District{}},
			},
		},
		{Code: "31", Name: "DKI JAKARTA", Cities: []City{}},
	}
	return doc
}

func Test_Document_AggregateRecomputesEveryCount(t *testing.T) {

	doc := buildDocument()

	// Pre-seed counts with garbage the way an inconsistent remote might
	// report them. Aggregate must overwrite all of them.
	doc.Hierarchy.Provinces[0].TotalCities = 99
	doc.Hierarchy.Provinces[0].Cities[0].TotalDistricts = 99
	doc.Hierarchy.Provinces[0].Cities[0].Districts[0].TotalVillages = 99
	doc.Metadata.Statistics = Statistics{TotalProvinces: 99, TotalVillages: 99}

	doc.Aggregate()

	assert.Equal(t, Statistics{
		TotalProvinces: 2,
		TotalCities:    2,
		TotalDistricts: 2,
		TotalVillages:  2,
	}, doc.Metadata.Statistics)

	for _, province := range doc.Hierarchy.Provinces {
		assert.Equal(t, len(province.Cities), province.TotalCities)
		for _, city := range province.Cities {
			assert.Equal(t, len(city.Districts), city.TotalDistricts)
			for _, district := range city.Districts {
				assert.Equal(t, len(district.Villages), district.TotalVillages)
			}
		}
	}
}

func Test_Document_StatisticsMatchPerNodeSums(t *testing.T) {

	doc := buildDocument()
	doc.Aggregate()

	var districts []District
	for _, province := range doc.Hierarchy.Provinces {
		for _, city := range province.Cities {
			districts = append(districts, city.Districts...)
		}
	}

	villageSum := lo.SumBy(districts, func(d District) int { return len(d.Villages) })
	assert.Equal(t, villageSum, doc.Metadata.Statistics.TotalVillages)

	citySum := lo.SumBy(doc.Hierarchy.Provinces, func(p Province) int { return len(p.Cities) })
	assert.Equal(t, citySum, doc.Metadata.Statistics.TotalCities)
}

func Test_Document_SerializationRoundTrip(t *testing.T) {

	doc := buildDocument()
	doc.Aggregate()

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var parsed Document
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, *doc, parsed)
}

func Test_Document_ContractFieldNames(t *testing.T) {

	raw, err := json.Marshal(buildDocument())
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"total_cities/regencies"`)
	assert.Contains(t, string(raw), `"total_districts"`)
	assert.Contains(t, string(raw), `"hierarchy":{"provinces":`)
}

func Test_DedupeByCode_LastOccurrenceWins(t *testing.T) {

	regions := []Region{
		{Code: "1101", Name: "OLD"},
		{Code: "1102", Name: "OTHER"},
		{Code: "1101", Name: "NEW"},
	}

	deduped := DedupeByCode(regions)
	require.Len(t, deduped, 2)
	assert.Equal(t, Region{Code: "1101", Name: "NEW"}, deduped[0])
	assert.Equal(t, Region{Code: "1102", Name: "OTHER"}, deduped[1])
}
