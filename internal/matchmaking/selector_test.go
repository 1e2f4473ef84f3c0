package matchmaking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sulusulthan/stranger-chat-web/internal/models"
)

// 난수 소스: 항상 bias 성공 / 항상 실패
func biasWin() float64  { return 0.0 }
func biasLose() float64 { return 0.99 }

func TestSelect_EmptyPool(t *testing.T) {
	idx := Select(nil, Preferences{Tags: []string{"anime"}}, DefaultCountryBias, biasWin)
	assert.Equal(t, -1, idx)
}

func TestSelect_TagOverlapBeatsCountryBias(t *testing.T) {
	// 언어는 전부 설정돼 있고 요청자와 다르게 해서 태그 교집합만 걸리게 한다.
	pool := []models.WaitingEntry{
		{ParticipantID: "p0", Tags: []string{"music"}, Language: "fr"},
		{ParticipantID: "p1", Tags: []string{"cooking"}, Language: "de", Country: "US"},
		{ParticipantID: "p2", Tags: []string{"anime"}, Language: "ja"},
		{ParticipantID: "p3", Tags: []string{"anime"}, Language: "pt"},
	}
	req := Preferences{Tags: []string{"anime", "coding"}, Language: "en", Country: "US"}

	// 국가 bias 성공 여부와 무관하게 스캔 순서상 첫 호환 엔트리가 이긴다.
	assert.Equal(t, 2, Select(pool, req, DefaultCountryBias, biasWin))
	assert.Equal(t, 2, Select(pool, req, DefaultCountryBias, biasLose))
}

func TestSelect_CountryBiasWhenNoCompatibility(t *testing.T) {
	pool := []models.WaitingEntry{
		{ParticipantID: "p0", Tags: []string{"music"}, Language: "fr"},
		{ParticipantID: "p1", Tags: []string{"cooking"}, Language: "de", Country: "KR"},
		{ParticipantID: "p2", Tags: []string{"games"}, Language: "ja"},
	}
	req := Preferences{Tags: []string{"anime"}, Language: "en", Country: "KR"}

	// bias 성공 → 같은 국가 엔트리
	assert.Equal(t, 1, Select(pool, req, DefaultCountryBias, biasWin))
	// bias 실패 → 가장 오래 기다린 엔트리 (인덱스 0)
	assert.Equal(t, 0, Select(pool, req, DefaultCountryBias, biasLose))
}

func TestSelect_NoCompatibilityNoCountry(t *testing.T) {
	pool := []models.WaitingEntry{
		{ParticipantID: "p0", Tags: []string{"music"}, Language: "fr"},
		{ParticipantID: "p1", Tags: []string{"cooking"}, Language: "de"},
	}
	req := Preferences{Tags: []string{"anime"}, Language: "en"}

	// 아무것도 안 걸려도 풀이 비어있지 않으면 항상 상대가 나온다.
	assert.Equal(t, 0, Select(pool, req, DefaultCountryBias, biasLose))
}

func TestSelect_UnsetLanguageMatchesAnything(t *testing.T) {
	pool := []models.WaitingEntry{
		{ParticipantID: "p0", Tags: []string{"music"}, Language: "fr"},
		{ParticipantID: "p1", Tags: []string{"cooking"}},
	}

	// 상대 쪽 언어 미설정 → 호환
	req := Preferences{Tags: []string{"anime"}, Language: "en"}
	assert.Equal(t, 1, Select(pool, req, DefaultCountryBias, biasLose))

	// 요청자 쪽 언어 미설정 → 첫 엔트리부터 호환
	req = Preferences{Tags: []string{"anime"}}
	assert.Equal(t, 0, Select(pool, req, DefaultCountryBias, biasLose))
}

func TestSelect_ExactLanguageMatch(t *testing.T) {
	pool := []models.WaitingEntry{
		{ParticipantID: "p0", Tags: []string{"music"}, Language: "fr"},
		{ParticipantID: "p1", Tags: []string{"cooking"}, Language: "en"},
	}
	req := Preferences{Tags: []string{"anime"}, Language: "en"}

	assert.Equal(t, 1, Select(pool, req, DefaultCountryBias, biasLose))
}

func TestTagsIntersect(t *testing.T) {
	assert.True(t, tagsIntersect([]string{"a", "b"}, []string{"c", "b"}))
	assert.False(t, tagsIntersect([]string{"a", "b"}, []string{"c", "d"}))
	assert.False(t, tagsIntersect(nil, []string{"a"}))
	assert.False(t, tagsIntersect([]string{"a"}, nil))
}
