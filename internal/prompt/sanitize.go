package prompt

import (
	"fmt"
	"unicode/utf8"

	"github.com/dmorgan81/stickerbot/internal/fault"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Sanitize makes s safe to send to the image API. Non-breaking spaces become
// plain spaces; zero-width spaces and byte order marks are dropped. If
// anything outside ASCII survives, a lossy pass keeps only printable ASCII,
// spaces, newlines and tabs, and the second return value reports it.
func Sanitize(s string) (string, bool, error) {
	out, _, err := transform.String(invisibles(), s)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", fault.ErrTransportEncoding, err)
	}
	if isASCII(out) {
		return out, false, nil
	}

	out, _, err = transform.String(runes.Remove(runes.Predicate(notTransportSafe)), out)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", fault.ErrTransportEncoding, err)
	}
	return out, true, nil
}

// NonASCII lists up to n runes of s above U+007F, for logging.
func NonASCII(s string, n int) []string {
	var found []string
	for _, r := range s {
		if r < utf8.RuneSelf {
			continue
		}
		if len(found) == n {
			break
		}
		found = append(found, fmt.Sprintf("%q(%d)", r, r))
	}
	return found
}

// Chains carry buffers, so each call builds its own.
func invisibles() transform.Transformer {
	return transform.Chain(
		runes.Map(func(r rune) rune {
			if r == '\u00a0' {
				return ' '
			}
			return r
		}),
		runes.Remove(runes.Predicate(func(r rune) bool {
			return r == '\u200b' || r == '\ufeff'
		})),
	)
}

func notTransportSafe(r rune) bool {
	return !(r >= '!' && r <= '~' || r == ' ' || r == '\n' || r == '\t')
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
