package chunker

import "strings"

// tokensPerWord approximates English text for Claude's tokenizer.
const tokensPerWord = 1.33

// EstimateTokens gives a rough token count from the word count. Non-empty
// text is never less than one token.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return max(int(float64(len(strings.Fields(text)))*tokensPerWord), 1)
}
