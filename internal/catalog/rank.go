package catalog

import (
	"sort"
	"strings"
	"unicode"
)

// Term weights. A query word naming the issuer or a currency unit is a much
// stronger signal than an arbitrary word in the title.
const (
	weightTitle    = 1.0
	weightCountry  = 3.0
	weightCurrency = 2.0
)

var currencyTerms = map[string]struct{}{
	"cent": {}, "cents": {}, "centavo": {}, "centavos": {}, "centime": {}, "centimes": {},
	"centimo": {}, "centimos": {}, "dime": {}, "dinar": {}, "dirham": {}, "dollar": {},
	"dollars": {}, "drachma": {}, "escudo": {}, "euro": {}, "euros": {}, "florin": {},
	"follis": {}, "franc": {}, "francs": {}, "groschen": {}, "guilder": {}, "kopek": {},
	"kopeks": {}, "krona": {}, "krone": {}, "kroner": {}, "kronor": {}, "lira": {}, "lire": {},
	"mark": {}, "markka": {}, "nickel": {}, "ore": {}, "penny": {}, "pence": {}, "pennies": {},
	"peseta": {}, "pesetas": {}, "peso": {}, "pesos": {}, "pfennig": {}, "pound": {},
	"pounds": {}, "quarter": {}, "rand": {}, "real": {}, "reais": {}, "riyal": {}, "ruble": {},
	"rubles": {}, "rupee": {}, "rupees": {}, "rupiah": {}, "schilling": {}, "shilling": {},
	"shillings": {}, "sol": {}, "soles": {}, "sovereign": {}, "won": {}, "yen": {}, "yuan": {},
	"zloty": {}, "denarius": {}, "antoninianus": {}, "krugerrand": {},
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tokenize(s) {
		set[t] = struct{}{}
	}
	return set
}

// Score rates how well a catalogue entry matches query.
func Score(query string, r Result) float64 {
	title := tokenSet(r.Title)
	issuer := tokenSet(r.Issuer.Name)

	var score float64
	seen := make(map[string]struct{})
	for _, term := range tokenize(query) {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		_, inTitle := title[term]
		_, inIssuer := issuer[term]
		_, isCurrency := currencyTerms[term]

		switch {
		case inIssuer:
			score += weightCountry
		case inTitle && isCurrency:
			score += weightCurrency
		case inTitle:
			score += weightTitle
		}
	}
	return score
}

// Rank scores results and orders them best first. Ties keep the catalogue's order.
func Rank(query string, results []Result) []Result {
	for i := range results {
		results[i].Score = Score(query, results[i])
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}
