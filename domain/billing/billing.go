// Package billing provides pure cost arithmetic and the monthly statement.
package billing

import (
	"math"

	"github.com/jihun-01/scratcha-dashboard/domain/plan"
)

// OverageCost returns the won charged for tokens used beyond the plan
// limit, at rate won per excess token. Zero whenever used <= limit.
// This is a PURE, total function.
func OverageCost(used, limit int64, rate float64) int64 {
	if used <= limit {
		return 0
	}
	return int64(math.Round(float64(used-limit) * rate))
}

// TotalCost returns base price plus overage.
// This is a PURE, total function and the identity
// TotalCost(u,l,b,r) == b + OverageCost(u,l,r) always holds.
func TotalCost(used, limit, basePrice int64, rate float64) int64 {
	return basePrice + OverageCost(used, limit, rate)
}

// Usage is the plan-usage figure shown on the overview and billing pages.
// TokensUsed is derived as RequestCount * AvgTokensPerRequest: individual
// event token cost is not modeled, so request counts stand in for it.
type Usage struct {
	TokensUsed          int64 `json:"tokens_used"`
	TokensLimit         int64 `json:"tokens_limit"`
	UsagePercentage     int   `json:"usage_percentage"`
	RequestCount        int   `json:"request_count"`
	AvgTokensPerRequest int   `json:"avg_tokens_per_request"`
}

// UsageFromRequests derives Usage from a request count.
// The percentage is rounded and clamped to 100 for display.
// This is a PURE function.
func UsageFromRequests(requestCount, avgTokens int, limit int64) Usage {
	used := int64(requestCount) * int64(avgTokens)
	pct := 0
	if limit > 0 {
		pct = int(math.Round(float64(used) / float64(limit) * 100))
		if pct > 100 {
			pct = 100
		}
	}
	return Usage{
		TokensUsed:          used,
		TokensLimit:         limit,
		UsagePercentage:     pct,
		RequestCount:        requestCount,
		AvgTokensPerRequest: avgTokens,
	}
}

// Item is one statement line.
type Item struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

// Statement is the month's bill: base subscription plus any overage.
type Statement struct {
	PlanName    string `json:"plan_name"`
	BasePrice   int64  `json:"base_price"`
	OverageCost int64  `json:"overage_cost"`
	TotalCost   int64  `json:"total_cost"`
	Items       []Item `json:"items"`
}

// BuildStatement composes the statement for a plan and its usage.
// This is a PURE function.
func BuildStatement(p plan.Plan, u Usage) Statement {
	overage := OverageCost(u.TokensUsed, p.TokenLimit, p.OverageRate)
	s := Statement{
		PlanName:    p.Name,
		BasePrice:   p.PriceMonthly,
		OverageCost: overage,
		TotalCost:   p.PriceMonthly + overage,
		Items: []Item{
			{Description: p.Name + " 기본 요금", Amount: p.PriceMonthly},
		},
	}
	if overage > 0 {
		s.Items = append(s.Items, Item{Description: "토큰 초과 사용 요금", Amount: overage})
	}
	return s
}
