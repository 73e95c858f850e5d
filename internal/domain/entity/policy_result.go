package entity

// Strength is the categorical label derived from a policy score.
type Strength string

const (
	StrengthVeryWeak   Strength = "very_weak"
	StrengthWeak       Strength = "weak"
	StrengthMedium     Strength = "medium"
	StrengthStrong     Strength = "strong"
	StrengthVeryStrong Strength = "very_strong"
)

// StrengthForScore maps a 0-100 score to its label.
func StrengthForScore(score int) Strength {
	switch {
	case score >= 80:
		return StrengthVeryStrong
	case score >= 60:
		return StrengthStrong
	case score >= 40:
		return StrengthMedium
	case score >= 20:
		return StrengthWeak
	default:
		return StrengthVeryWeak
	}
}

// PolicyResult is the outcome of evaluating one candidate password.
// IsValid is true exactly when Errors is empty.
type PolicyResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Score    int      `json:"score"`
	Strength Strength `json:"strength"`
}

// NewPolicyResult builds a result, clamping the score and deriving validity and strength.
func NewPolicyResult(errors []string, score int) PolicyResult {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	if errors == nil {
		errors = []string{}
	}
	return PolicyResult{
		IsValid:  len(errors) == 0,
		Errors:   errors,
		Score:    score,
		Strength: StrengthForScore(score),
	}
}
