package ollama

import "strings"

// ellipsis marks a truncated reply.
const ellipsis = "…"

// Truncate cuts text to at most budget runes plus one ellipsis rune.
// Text at or under the budget is returned unmodified. Over-budget text is
// cut at the later of the last space and the last newline before the
// budget, but only if that position has covered at least softRatio of the
// budget; otherwise the cut happens exactly at the budget so a reply with
// no usable break point still fits. Trailing whitespace at the cut is
// removed before the ellipsis is appended. Operating on runes keeps
// multi-byte content intact.
func Truncate(text string, budget int, softRatio float64) string {
	if budget <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}

	head := runes[:budget]
	cut := budget

	lastSpace := lastIndexRune(head, ' ')
	lastNewline := lastIndexRune(head, '\n')
	soft := lastSpace
	if lastNewline > soft {
		soft = lastNewline
	}

	minProgress := int(float64(budget) * softRatio)
	if soft >= minProgress {
		cut = soft
	}

	return strings.TrimRight(string(head[:cut]), " \t\n\r") + ellipsis
}

func lastIndexRune(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
