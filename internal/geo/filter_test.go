package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagehq/go-trip-planner/internal/types"
)

// Seoul City Hall and a few places around it.
const (
	seoulLat = 37.5665
	seoulLng = 126.9780
	busanLat = 35.1796
	busanLng = 129.0756
)

func candidate(name string, lat, lng float64) types.PlaceCandidate {
	return types.PlaceCandidate{
		Name:      name,
		Address:   "서울 중구 " + name,
		Latitude:  types.Ptr(lat),
		Longitude: types.Ptr(lng),
	}
}

func TestDistance(t *testing.T) {
	t.Run("zero for identical points", func(t *testing.T) {
		assert.Zero(t, Distance(seoulLat, seoulLng, seoulLat, seoulLng))
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := Distance(seoulLat, seoulLng, busanLat, busanLng)
		d2 := Distance(busanLat, busanLng, seoulLat, seoulLng)
		assert.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		// pi * R / 180 with R = 6371
		assert.InDelta(t, 111.1949, Distance(37.0, 127.0, 38.0, 127.0), 0.001)
	})

	t.Run("seoul to busan", func(t *testing.T) {
		assert.InDelta(t, 325, Distance(seoulLat, seoulLng, busanLat, busanLng), 5)
	})
}

func TestFilterByDistance(t *testing.T) {
	center := candidate("시청", seoulLat, seoulLng)

	t.Run("keeps candidates inside radius and stamps distance", func(t *testing.T) {
		near := candidate("덕수궁", 37.5658, 126.9751)
		far := candidate("해운대", 35.1587, 129.1604)

		got := FilterByDistance([]types.PlaceCandidate{near, far}, seoulLat, seoulLng, 5, DefaultBounds)

		require.Len(t, got, 1)
		assert.Equal(t, "덕수궁", got[0].Name)
		require.NotNil(t, got[0].DistanceFromCenterKm)
		assert.Less(t, *got[0].DistanceFromCenterKm, 5.0)
	})

	t.Run("drops candidates with missing coordinates", func(t *testing.T) {
		missing := types.PlaceCandidate{Name: "주소없는집", Address: "서울 어딘가"}
		got := FilterByDistance([]types.PlaceCandidate{center, missing}, seoulLat, seoulLng, 5, DefaultBounds)
		require.Len(t, got, 1)
		assert.Equal(t, "시청", got[0].Name)
	})

	t.Run("treats out of bounds coordinates as missing", func(t *testing.T) {
		invalid := candidate("좌표깨진집", 90.0, 200.0)
		got := FilterByDistance([]types.PlaceCandidate{invalid}, seoulLat, seoulLng, 10000, DefaultBounds)
		assert.Empty(t, got)
	})

	t.Run("boundary is inclusive", func(t *testing.T) {
		// ~1.11 km north of the center
		edge := candidate("북쪽집", seoulLat+0.01, seoulLng)
		got := FilterByDistance([]types.PlaceCandidate{edge}, seoulLat, seoulLng, 1.12, DefaultBounds)
		require.Len(t, got, 1)
	})
}

func TestFilterByAddress(t *testing.T) {
	places := []types.PlaceCandidate{
		{Name: "a", Address: "서울 중구 명동길 14"},
		{Name: "b", Address: "서울 종로구 인사동길 12"},
		{Name: "c", Address: "서울 중구 을지로 30", RoadAddress: "서울 중구 을지로1가"},
	}

	t.Run("no-op without requirements", func(t *testing.T) {
		assert.Equal(t, places, FilterByAddress(places, "", ""))
	})

	t.Run("district requirement", func(t *testing.T) {
		got := FilterByAddress(places, "중구", "")
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].Name)
		assert.Equal(t, "c", got[1].Name)
	})

	t.Run("district and neighborhood requirement", func(t *testing.T) {
		got := FilterByAddress(places, "중구", "명동")
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].Name)
	})

	t.Run("road address counts as address text", func(t *testing.T) {
		got := FilterByAddress(places, "", "을지로1가")
		require.Len(t, got, 1)
		assert.Equal(t, "c", got[0].Name)
	})
}

func TestSortByDistance(t *testing.T) {
	withDistance := func(name string, d float64) types.PlaceCandidate {
		return types.PlaceCandidate{Name: name, DistanceFromCenterKm: types.Ptr(d)}
	}

	t.Run("ascending with unstamped candidates last", func(t *testing.T) {
		got := SortByDistance([]types.PlaceCandidate{
			withDistance("far", 3.2),
			{Name: "unknown"},
			withDistance("near", 0.4),
		})
		require.Len(t, got, 3)
		assert.Equal(t, "near", got[0].Name)
		assert.Equal(t, "far", got[1].Name)
		assert.Equal(t, "unknown", got[2].Name)
	})

	t.Run("ties keep provider order", func(t *testing.T) {
		got := SortByDistance([]types.PlaceCandidate{
			withDistance("first", 1.0),
			withDistance("second", 1.0),
		})
		assert.Equal(t, "first", got[0].Name)
		assert.Equal(t, "second", got[1].Name)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		in := []types.PlaceCandidate{withDistance("b", 2), withDistance("a", 1)}
		_ = SortByDistance(in)
		assert.Equal(t, "b", in[0].Name)
	})
}

func TestRerank(t *testing.T) {
	scored := func(name string, d, rating float64) types.PlaceCandidate {
		return types.PlaceCandidate{
			Name:                 name,
			Rating:               types.Ptr(rating),
			DistanceFromCenterKm: types.Ptr(d),
		}
	}

	t.Run("rating dominates with the reference weights", func(t *testing.T) {
		got := Rerank([]types.PlaceCandidate{
			scored("close but mediocre", 0.1, 2.0),
			scored("further but loved", 1.5, 4.9),
		}, 0.4, 0.6)
		assert.Equal(t, "further but loved", got[0].Name)
	})

	t.Run("distance breaks equal ratings", func(t *testing.T) {
		got := Rerank([]types.PlaceCandidate{
			scored("far", 2.0, 4.0),
			scored("near", 0.2, 4.0),
		}, 0.4, 0.6)
		assert.Equal(t, "near", got[0].Name)
	})

	t.Run("score ties keep discovery order", func(t *testing.T) {
		got := Rerank([]types.PlaceCandidate{
			scored("first", 1.0, 4.0),
			scored("second", 1.0, 4.0),
		}, 0.4, 0.6)
		assert.Equal(t, "first", got[0].Name)
		assert.Equal(t, "second", got[1].Name)
	})

	t.Run("missing rating scores as zero", func(t *testing.T) {
		unrated := types.PlaceCandidate{Name: "unrated", DistanceFromCenterKm: types.Ptr(0.5)}
		got := Rerank([]types.PlaceCandidate{unrated, scored("rated", 0.5, 3.0)}, 0.4, 0.6)
		assert.Equal(t, "rated", got[0].Name)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Rerank(nil, 0.4, 0.6))
	})
}

func TestDedupeByName(t *testing.T) {
	got := DedupeByName([]types.PlaceCandidate{
		{Name: "Cafe Onion"},
		{Name: "cafe-onion"},
		{Name: "Cafe_Onion "},
		{Name: "Cafe Layered"},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "Cafe Onion", got[0].Name)
	assert.Equal(t, "Cafe Layered", got[1].Name)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "gwangallibeach", NormalizeName("Gwangalli Beach"))
	assert.Equal(t, "gwangallibeach", NormalizeName("gwangalli-beach"))
	assert.Equal(t, NormalizeName("광안리 해수욕장"), NormalizeName("광안리해수욕장"))
}

func TestPlaceKey(t *testing.T) {
	t.Run("same place yields the same key", func(t *testing.T) {
		assert.Equal(t,
			PlaceKey("Cafe Onion", "서울 성동구 아차산로9길 8"),
			PlaceKey("cafe onion", "서울 성동구 아차산로9길8"),
		)
	})

	t.Run("same name different address differs", func(t *testing.T) {
		assert.NotEqual(t,
			PlaceKey("Cafe Onion", "서울 성동구"),
			PlaceKey("Cafe Onion", "서울 종로구"),
		)
	})
}
