package auth

import (
	"strings"
	"unicode"
)

const (
	MinPasswordLen    = 8
	StrongPasswordLen = 12
	// MinFormPasswordLen is the minimum accepted by account forms.
	MinFormPasswordLen = 6
)

// PasswordSymbols is the fixed punctuation set counted by the symbol rule.
const PasswordSymbols = `!@#$%^&*(),.?":{}|<>`

// StrengthLabel is the discrete tier derived from a password score.
type StrengthLabel string

const (
	StrengthVeryWeak   StrengthLabel = "very_weak"
	StrengthWeak       StrengthLabel = "weak"
	StrengthMedium     StrengthLabel = "medium"
	StrengthStrong     StrengthLabel = "strong"
	StrengthVeryStrong StrengthLabel = "very_strong"
)

// Suggestions, in the order they are reported.
const (
	SuggestEnterPassword = "enter a password"
	SuggestLength        = "use at least 8 characters"
	SuggestMixedCase     = "mix uppercase and lowercase letters"
	SuggestDigit         = "add a number"
	SuggestSymbol        = "add a special character"
)

// PasswordStrength is derived from a candidate password and never stored.
type PasswordStrength struct {
	Score       int           `json:"score"`
	Label       StrengthLabel `json:"label"`
	Suggestions []string      `json:"suggestions"`
}

// ScorePassword scores a candidate password from 0 to 5. Each rule adds one
// point independently. It has no side effects and is safe to call on every keystroke.
func ScorePassword(password string) PasswordStrength {
	if password == "" {
		return PasswordStrength{
			Score:       0,
			Label:       labelFor(0),
			Suggestions: []string{SuggestEnterPassword},
		}
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	hasSymbol := false

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(PasswordSymbols, r):
			hasSymbol = true
		}
	}

	length := len([]rune(password))
	score := 0
	suggestions := make([]string, 0, 4)

	if length >= MinPasswordLen {
		score++
	} else {
		// the two length rules share one suggestion
		suggestions = append(suggestions, SuggestLength)
	}
	if length >= StrongPasswordLen {
		score++
	}
	if hasUpper && hasLower {
		score++
	} else {
		suggestions = append(suggestions, SuggestMixedCase)
	}
	if hasDigit {
		score++
	} else {
		suggestions = append(suggestions, SuggestDigit)
	}
	if hasSymbol {
		score++
	} else {
		suggestions = append(suggestions, SuggestSymbol)
	}

	return PasswordStrength{
		Score:       score,
		Label:       labelFor(score),
		Suggestions: suggestions,
	}
}

func labelFor(score int) StrengthLabel {
	switch {
	case score <= 0:
		return StrengthVeryWeak
	case score == 1:
		return StrengthWeak
	case score == 2:
		return StrengthMedium
	case score == 3:
		return StrengthStrong
	default:
		return StrengthVeryStrong
	}
}
