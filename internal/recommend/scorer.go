package recommend

import "math"

// DefaultMaxDistanceKm is the distance ceiling applied when the user has not
// set a travel limit.
const DefaultMaxDistanceKm = 20.0

// DistanceScore normalizes a distance into [0,1]. Unknown distance is neutral
// (0.5). Beyond the ceiling the score is 0.0 but the school is still ranked,
// never excluded. Within the ceiling the score decays linearly from 1.0 at
// 0 km to 0.0 at the ceiling.
func DistanceScore(distanceKm *float64, maxKm float64) float64 {
	if distanceKm == nil {
		return 0.5
	}
	if maxKm <= 0 {
		maxKm = DefaultMaxDistanceKm
	}
	d := *distanceKm
	if d < 0 {
		d = 0
	}
	if d > maxKm {
		return 0.0
	}
	return 1.0 - d/maxKm
}

// Result is one school's computed score with its breakdown.
type Result struct {
	Score        float64
	ScorePercent int
	Reasons      Reasons
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Score combines the level, subject, CCA and distance factors under the given
// weight vector. Pure: identical inputs always yield identical results.
func Score(p Prefs, s SchoolFacts, distanceKm *float64, maxKm float64, w Weights) Result {
	levelPref := NormalizeLevel(p.Level)

	levelScore := LevelScore(levelPref, s.Level)
	subjScore, subjMatches := OverlapScore(p.Subjects, s.Subjects)
	ccaScore, ccaMatches := OverlapScore(p.CCAs, s.CCAs)
	distScore := DistanceScore(distanceKm, maxKm)

	score := w.Level*levelScore +
		w.Subjects*subjScore +
		w.CCAs*ccaScore +
		w.Distance*distScore

	return Result{
		Score:        score,
		ScorePercent: int(math.Round(clamp01(score) * 100)),
		Reasons: Reasons{
			CCAMatches:     ccaMatches,
			SubjectMatches: subjMatches,
			LevelMatch:     levelScore == 1.0 && levelPref != "",
		},
	}
}
