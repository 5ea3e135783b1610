package service

import "fmt"

// suggestionCatalog holds follow-up question templates in display order
var suggestionCatalog = []string{
	"What is %s's P/E ratio?",
	"Show me %s's dividend history",
	"How has %s performed over the past year?",
	"How does %s compare to its 52-week high and low?",
	"What sector is %s in?",
	"What is %s's average trading volume?",
}

// chatSuggestions are shown by the ticker-less chat endpoint
var chatSuggestions = []string{
	"Show me AAPL's price trend",
	"What sector is MSFT in?",
	"Does KO pay dividends?",
	"What is NVDA's average trading volume?",
}

// Suggestions returns up to n follow-up questions templated with the ticker
func Suggestions(ticker string, n int) []string {
	if n > len(suggestionCatalog) {
		n = len(suggestionCatalog)
	}
	out := make([]string, 0, n)
	for _, tmpl := range suggestionCatalog[:n] {
		out = append(out, fmt.Sprintf(tmpl, ticker))
	}
	return out
}
