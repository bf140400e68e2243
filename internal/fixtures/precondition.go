package fixtures

import (
	"unicode/utf8"

	"gitlab.com/equivcheck-2025.net/internal/core/services/adapt"
	"gitlab.com/equivcheck-2025.net/internal/domain"
)

const PreconditionContract = "first-letter"

func firstLetter(text string) rune {
	if text == "" {
		return '?'
	}
	r, _ := utf8.DecodeRuneInString(text)
	return r
}

// Precondition declares an entry point whose empty inputs are discarded before
// either unit runs.
func Precondition() domain.Declaration {
	return domain.Declaration{
		Name:        PreconditionContract,
		Description: "entry point guarded by a precondition on its input",
		Reference:   adapt.Func1("firstLetter", firstLetter),
		Candidates: map[string]domain.Unit{
			"correct": adapt.Func1("firstLetter", firstLetter),
			// Panics on empty text, which the precondition never lets through.
			"unguarded": adapt.Func1("firstLetter", func(text string) rune {
				return []rune(text)[0]
			}),
			"last-letter": adapt.Func1("firstLetter", func(text string) rune {
				runes := []rune(text)
				return runes[len(runes)-1]
			}),
		},
		Precondition: func(c domain.GeneratedCase) bool {
			text, ok := c.Args[0].(string)
			return ok && text != ""
		},
		Override: &domain.RunConfigOverride{
			MinComplexity: domain.Ptr(1),
		},
	}
}
