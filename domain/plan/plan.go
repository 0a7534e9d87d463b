// Package plan provides the pricing tier catalog and pure helpers.
package plan

import "strings"

// Plan is a pricing tier (immutable value type).
// PriceMonthly is in won with no minor units; it is parsed once from the
// display string at catalog construction, never inside derivation paths.
// OverageRate is won billed per token beyond TokenLimit.
type Plan struct {
	Name         string   `json:"name"`
	TokenLimit   int64    `json:"token_limit"`
	PriceMonthly int64    `json:"price_monthly"`
	PriceDisplay string   `json:"price_display"`
	OverageRate  float64  `json:"overage_rate"`
	Description  string   `json:"description"`
	Features     []string `json:"features"`
}

// IsUnlimited reports whether the plan is effectively uncapped.
// This is a PURE function.
func IsUnlimited(p Plan) bool {
	return p.TokenLimit >= 999999999
}

// ParsePrice extracts the integer won value from a currency display
// string such as "₩29,900". ok is false when the string carries no
// digits (e.g. the Enterprise "맞춤 견적" quote).
func ParsePrice(s string) (int64, bool) {
	var n int64
	seen := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n = n*10 + int64(r-'0')
			seen = true
		}
	}
	return n, seen
}

// Catalog returns the fixed four-tier catalog. The returned slice is a
// fresh copy; callers may not mutate shared state through it.
func Catalog() []Plan {
	plans := make([]Plan, len(catalog))
	copy(plans, catalog)
	return plans
}

// Find looks a plan up by name, case-insensitively.
// This is a PURE function.
func Find(name string) (Plan, bool) {
	for _, p := range catalog {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Plan{}, false
}

// Default returns the tier new dashboards start on.
func Default() Plan {
	p, _ := Find("Starter")
	return p
}

var catalog = buildCatalog()

func buildCatalog() []Plan {
	defs := []struct {
		name        string
		limit       int64
		price       string
		rate        float64
		description string
		features    []string
	}{
		{"Free", 1000, "₩0", 0, "월 1,000 토큰 무료제공",
			[]string{"기본 API 통계", "광고 포함"}},
		{"Starter", 50000, "₩29,900", 2.0, "월 50,000 토큰 제공",
			[]string{"기본 API & 통계", "광고 제거", "이메일 지원"}},
		{"Pro", 200000, "₩79,900", 2.0, "월 200,000 토큰 제공",
			[]string{"Starter의 모든 혜택", "커스텀 UI 스킨 지원", "고급 분석 리포트"}},
		{"Enterprise", 999999999, "맞춤 견적", 0, "월 무제한 또는 대규모 토큰 패키지",
			[]string{"Pro의 모든 혜택", "전용 인프라/보안 강화", "SLA 보장", "24/7 모니터링"}},
	}

	plans := make([]Plan, 0, len(defs))
	for _, d := range defs {
		price, _ := ParsePrice(d.price)
		plans = append(plans, Plan{
			Name:         d.name,
			TokenLimit:   d.limit,
			PriceMonthly: price,
			PriceDisplay: d.price,
			OverageRate:  d.rate,
			Description:  d.description,
			Features:     d.features,
		})
	}
	return plans
}
