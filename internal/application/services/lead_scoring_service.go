package services

import (
	"sort"
	"time"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
)

// Lead score weights; they sum to MaxLeadScore.
const (
	weightContact      = 30
	weightQuickOrigin  = 20
	weightService      = 25
	weightEngagement   = 15
	weightRecency      = 10
	MaxLeadScore       = 100
	abandonedLeadAfter = 48 * time.Hour
)

// Score levels
const (
	ScoreLevelExcellent = "excellent"
	ScoreLevelGood      = "good"
	ScoreLevelMedium    = "medium"
	ScoreLevelLow       = "low"
	ScoreLevelVeryLow   = "very_low"
)

var scoreColors = map[string]string{
	ScoreLevelExcellent: "success",
	ScoreLevelGood:      "info",
	ScoreLevelMedium:    "warning",
	ScoreLevelLow:       "orange",
	ScoreLevelVeryLow:   "danger",
}

// LeadScore is a score with its derived labels
type LeadScore struct {
	Score int    `json:"score"`
	Level string `json:"level"`
	Color string `json:"color"`
}

// LeadScorer computes a 0-100 quality score for leads
type LeadScorer struct {
	now func() time.Time
}

// NewLeadScorer creates a scorer; a nil clock uses time.Now
func NewLeadScorer(now func() time.Time) *LeadScorer {
	if now == nil {
		now = time.Now
	}
	return &LeadScorer{now: now}
}

// CalculateScore returns the lead's score in [0, 100]
func (s *LeadScorer) CalculateScore(lead *entities.Lead) int {
	now := s.now()
	score := 0

	switch {
	case lead.Email != "" && lead.Phone != "":
		score += weightContact
	case lead.Email != "" || lead.Phone != "":
		score += weightContact / 2
	}

	age := now.Sub(lead.CreatedAt)
	switch {
	case age < time.Hour:
		score += weightRecency
	case age < 24*time.Hour:
		score += weightRecency / 2
	}

	if lead.SourceCreatedAt != nil && now.Sub(*lead.SourceCreatedAt) < 24*time.Hour {
		score += weightQuickOrigin
	}

	if lead.FormData.HasServiceIntent() {
		score += weightService
	}

	switch filled := lead.FormData.FilledCount(); {
	case filled >= 3:
		score += weightEngagement
	case filled >= 1:
		score += weightEngagement / 2
	}

	if score > MaxLeadScore {
		score = MaxLeadScore
	}
	return score
}

// ScoreLevel maps a score to its band; each band includes its lower bound
func ScoreLevel(score int) string {
	switch {
	case score >= 80:
		return ScoreLevelExcellent
	case score >= 60:
		return ScoreLevelGood
	case score >= 40:
		return ScoreLevelMedium
	case score >= 20:
		return ScoreLevelLow
	default:
		return ScoreLevelVeryLow
	}
}

// ScoreColor returns the badge color for a score
func ScoreColor(score int) string {
	return scoreColors[ScoreLevel(score)]
}

// Score returns the score with its level and color
func (s *LeadScorer) Score(lead *entities.Lead) LeadScore {
	score := s.CalculateScore(lead)
	return LeadScore{Score: score, Level: ScoreLevel(score), Color: ScoreColor(score)}
}

// BatchScore scores every lead keyed by lead ID
func (s *LeadScorer) BatchScore(leads []*entities.Lead) map[int64]LeadScore {
	out := make(map[int64]LeadScore, len(leads))
	for _, lead := range leads {
		out[lead.ID] = s.Score(lead)
	}
	return out
}

// TopLeads returns up to limit leads scoring at least minScore, best first
func (s *LeadScorer) TopLeads(leads []*entities.Lead, limit, minScore int) []entities.ScoredLead {
	var scored []entities.ScoredLead
	for _, lead := range leads {
		ls := s.Score(lead)
		if ls.Score < minScore {
			continue
		}
		scored = append(scored, entities.ScoredLead{Lead: lead, Score: ls.Score, Level: ls.Level, Color: ls.Color})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// LeadRecommendation flags a lead that needs staff attention
type LeadRecommendation struct {
	LeadID   int64  `json:"lead_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	AgeHours int    `json:"age_hours,omitempty"`
	Reason   string `json:"reason"`
}

// LeadRecommendations groups leads needing attention
type LeadRecommendations struct {
	HighQualityUnassigned []LeadRecommendation `json:"high_quality_unassigned"`
	LowQualityContacted   []LeadRecommendation `json:"low_quality_contacted"`
	AbandonedHighQuality  []LeadRecommendation `json:"abandoned_high_quality"`
}

// Recommendations finds high-quality new leads, low-quality contacted leads
// and high-quality assigned leads older than 48 hours.
func (s *LeadScorer) Recommendations(leads []*entities.Lead) LeadRecommendations {
	now := s.now()
	recs := LeadRecommendations{
		HighQualityUnassigned: []LeadRecommendation{},
		LowQualityContacted:   []LeadRecommendation{},
		AbandonedHighQuality:  []LeadRecommendation{},
	}

	for _, lead := range leads {
		score := s.CalculateScore(lead)

		if score >= 70 && lead.Status == entities.LeadStatusNew {
			recs.HighQualityUnassigned = append(recs.HighQualityUnassigned, LeadRecommendation{
				LeadID: lead.ID, Name: lead.FullName(), Score: score,
				Reason: "High quality lead not yet picked up",
			})
		}

		if score <= 30 && lead.Status == entities.LeadStatusContacted {
			recs.LowQualityContacted = append(recs.LowQualityContacted, LeadRecommendation{
				LeadID: lead.ID, Name: lead.FullName(), Score: score,
				Reason: "Low quality lead, follow-up can stop",
			})
		}

		if score >= 60 && lead.Status == entities.LeadStatusAssigned {
			if age := now.Sub(lead.CreatedAt); age > abandonedLeadAfter {
				recs.AbandonedHighQuality = append(recs.AbandonedHighQuality, LeadRecommendation{
					LeadID: lead.ID, Name: lead.FullName(), Score: score,
					AgeHours: int(age.Hours()),
					Reason:   "High quality lead untouched for 48 hours",
				})
			}
		}
	}

	return recs
}
