package frame

import "strings"

// regionalContext is what the prompt can say about a destination beyond
// the request itself: foods worth scheduling a meal slot around, and a
// climate note that nudges indoor/outdoor slot choices.
type regionalContext struct {
	Cuisines    []string
	ClimateHint string
}

// regionalContexts covers the major Korean destinations. Unknown cities
// simply get no enrichment; the prompt omits the lines.
var regionalContexts = map[string]regionalContext{
	"서울": {
		Cuisines:    []string{"광장시장 빈대떡", "평양냉면"},
		ClimateHint: "사계절 뚜렷, 여름 폭염과 겨울 한파 주의",
	},
	"부산": {
		Cuisines:    []string{"돼지국밥", "밀면", "씨앗호떡"},
		ClimateHint: "해안 도시라 바람이 강하고 겨울이 온화함",
	},
	"제주": {
		Cuisines:    []string{"흑돼지구이", "고기국수", "갈치조림"},
		ClimateHint: "섬 날씨라 변덕이 심하고 바람이 강함",
	},
	"전주": {
		Cuisines:    []string{"전주비빔밥", "콩나물국밥"},
		ClimateHint: "내륙 분지, 여름 무더위가 심한 편",
	},
	"강릉": {
		Cuisines:    []string{"초당순두부", "물회"},
		ClimateHint: "동해안이라 여름이 선선하고 겨울 눈이 많음",
	},
	"대구": {
		Cuisines:    []string{"막창구이", "납작만두"},
		ClimateHint: "분지 지형, 여름 더위가 전국에서 가장 심함",
	},
	"인천": {
		Cuisines:    []string{"짜장면", "쫄면"},
		ClimateHint: "서해안, 해풍으로 체감 온도가 낮은 편",
	},
	"춘천": {
		Cuisines:    []string{"닭갈비", "막국수"},
		ClimateHint: "호반 도시, 아침 안개가 잦고 일교차가 큼",
	},
	"여수": {
		Cuisines:    []string{"갓김치", "서대회무침"},
		ClimateHint: "남해안, 온화하지만 여름 습도가 높음",
	},
	"경주": {
		Cuisines:    []string{"황남빵", "경주쌈밥"},
		ClimateHint: "야외 유적 위주라 우천 시 일정 조정 필요",
	},
}

// lookupRegionalContext matches a resolved city against the table. City
// names may carry suffixes ("부산광역시", "제주도"), so the match is a
// prefix check on the table keys.
func lookupRegionalContext(city string) (regionalContext, bool) {
	city = strings.TrimSpace(city)
	if city == "" {
		return regionalContext{}, false
	}
	if rc, ok := regionalContexts[city]; ok {
		return rc, true
	}
	for name, rc := range regionalContexts {
		if strings.HasPrefix(city, name) {
			return rc, true
		}
	}
	return regionalContext{}, false
}
