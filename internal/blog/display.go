package blog

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"blogdesk/internal/models"
)

// CardType selects how a title is shortened for display.
type CardType string

const (
	CardDefault  CardType = "default"
	CardTrending CardType = "trending"
	CardRecent   CardType = "recent"
	CardSeeAll   CardType = "see-all"
)

const (
	defaultCardCharLimit = 20
	ellipsis             = "..."
)

var cardWordLimits = map[CardType]int{
	CardTrending: 3,
	CardSeeAll:   4,
	CardRecent:   9,
}

// ParseCardType accepts a card variant name. Empty means default.
func ParseCardType(raw string) (CardType, error) {
	value := CardType(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return CardDefault, nil
	}
	if value == CardDefault {
		return value, nil
	}
	if _, ok := cardWordLimits[value]; ok {
		return value, nil
	}
	return "", fmt.Errorf("invalid card type %q", raw)
}

// TruncateTitle shortens title for the given card. Default cards cut by
// characters, the others by words. Titles within the limit are unchanged.
func TruncateTitle(title string, card CardType) string {
	if title == "" {
		return ""
	}
	if card == CardDefault || card == "" {
		if utf8.RuneCountInString(title) <= defaultCardCharLimit {
			return title
		}
		return string([]rune(title)[:defaultCardCharLimit]) + ellipsis
	}

	limit, ok := cardWordLimits[card]
	if !ok {
		limit = cardWordLimits[CardSeeAll]
	}
	words := strings.Split(title, " ")
	if len(words) <= limit {
		return title
	}
	return strings.Join(words[:limit], " ") + ellipsis
}

// FormatDisplayDate renders a publication date as DD-MM-YYYY.
func FormatDisplayDate(t time.Time) string {
	return t.Format(models.DisplayDateLayout)
}
