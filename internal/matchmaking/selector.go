package matchmaking

import (
	"github.com/Sulusulthan/stranger-chat-web/internal/models"
)

// DefaultScanLimit 한 번의 매칭 시도에서 고려하는 최대 대기 인원
const DefaultScanLimit = 50

// DefaultCountryBias 같은 국가 매칭 선호 확률
const DefaultCountryBias = 0.7

// Preferences 매칭 요청자의 선호 정보
type Preferences struct {
	Tags     []string
	Language string
	Country  string
}

// Select 대기열 스냅샷에서 최적 상대의 인덱스를 고른다. 빈 풀이면 -1.
//
// 선택 규칙 (순서가 중요):
//  1. 요청자에게 국가가 있고 풀에 같은 국가의 엔트리가 있으면 bias 확률로
//     그 엔트리를 잠정 선택한다. 실패하면 잠정 선택은 인덱스 0 (가장 오래
//     기다린 엔트리).
//  2. 풀을 순서대로 훑어 태그가 겹치거나, 어느 한쪽이라도 언어가 비어
//     있거나, 언어가 정확히 같은 첫 엔트리가 잠정 선택을 덮어쓴다.
//     국가 bias에 성공했더라도 스캔 순서상 더 앞의 호환 엔트리가 이긴다.
//  3. 아무것도 걸리지 않으면 잠정 선택을 그대로 반환한다. 풀이 비어있지
//     않은 한 상대는 항상 나온다.
//
// randFloat는 [0,1) 난수 소스 (테스트에서 주입).
func Select(pool []models.WaitingEntry, req Preferences, bias float64, randFloat func() float64) int {
	if len(pool) == 0 {
		return -1
	}

	selected := 0
	if req.Country != "" {
		for i, entry := range pool {
			if entry.Country == req.Country {
				if randFloat() < bias {
					selected = i
				}
				break
			}
		}
	}

	for i, entry := range pool {
		if tagsIntersect(entry.Tags, req.Tags) ||
			entry.Language == "" || req.Language == "" ||
			entry.Language == req.Language {
			return i
		}
	}

	return selected
}

func tagsIntersect(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
