package usecase

import (
	"math/rand"

	"DisasterWatch/internal/domain"
	"DisasterWatch/internal/ports"
)

// RandomEngagementSampler stands in for a real social-signal feed.
type RandomEngagementSampler struct{}

var _ ports.EngagementSampler = RandomEngagementSampler{}

// Sample draws placeholder counters from the same fixed ranges the
// presentation layer expects.
func (RandomEngagementSampler) Sample() domain.Engagement {
	return domain.Engagement{
		Likes:    5 + rand.Intn(96),
		Shares:   2 + rand.Intn(49),
		Comments: 1 + rand.Intn(30),
	}
}

// RandomRateSampler stands in for real delivery telemetry.
type RandomRateSampler struct{}

var _ ports.RateSampler = RandomRateSampler{}

// Rates draws placeholder delivery and engagement percentages.
func (RandomRateSampler) Rates() (delivery, engagement float64) {
	return 85 + rand.Float64()*13, 60 + rand.Float64()*25
}
