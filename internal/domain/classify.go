package domain

import (
	"strings"
	"unicode"
)

const (
	RegionAfrica       = "Africa"
	RegionAsia         = "Asia"
	RegionEurope       = "Europe"
	RegionNorthAmerica = "North America"
	RegionSouthAmerica = "South America"
	RegionOceania      = "Oceania"
	RegionAncient      = "Ancient"
	RegionOther        = "Other"
	RegionUnknown      = "Unknown"
)

// HistoricalYearCutoff is the first year that is not historical on its own.
const HistoricalYearCutoff = 1900

type Classification struct {
	Region       string `json:"region"`
	IsHistorical bool   `json:"is_historical"`
}

// Classify derives the region and historical flag of an item. A nil or zero
// year means the year is unknown and never makes an item historical.
func Classify(country string, year *int) Classification {
	return Classification{
		Region:       RegionFor(country),
		IsHistorical: IsHistorical(country, year),
	}
}

func RegionFor(country string) string {
	normalized := normalizeCountry(country)
	if normalized == "" {
		return RegionUnknown
	}
	if region, ok := countryRegions[normalized]; ok {
		return region
	}
	// Abbreviations such as "usa" are only known to the alias table.
	if alias, ok := countryAliases[normalized]; ok {
		if region, ok := countryRegions[strings.ToLower(alias)]; ok {
			return region
		}
	}
	return RegionOther
}

func IsHistorical(country string, year *int) bool {
	if _, ok := historicalCountries[normalizeCountry(country)]; ok {
		return true
	}
	return year != nil && *year != 0 && *year < HistoricalYearCutoff
}

// MapCountry returns the modern country name used when plotting an item on a
// world map. Unknown names are returned title-cased.
func MapCountry(country string) string {
	normalized := normalizeCountry(country)
	if normalized == "" {
		return ""
	}
	if alias, ok := countryAliases[normalized]; ok {
		return alias
	}
	return titleCase(normalized)
}

func normalizeCountry(country string) string {
	return strings.ToLower(strings.TrimSpace(country))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

var historicalCountries = map[string]struct{}{
	"ussr":                       {},
	"yugoslavia":                 {},
	"rhodesia":                   {},
	"czechoslovakia":             {},
	"east germany":               {},
	"german democratic republic": {},
	"roman empire":               {},
	"ancient greece":             {},
	"seleucid":                   {},
	"seleucid empire":            {},
	"siscia":                     {},
	"consz":                      {},
	"nicomedia":                  {},
	"constantinople":             {},
	"rome":                       {},
	"thessalonica":               {},
	"mediolanum (milan)":         {},
	"antioch":                    {},
}

var countryAliases = map[string]string{
	"united states of america":   "United States",
	"usa":                        "United States",
	"us":                         "United States",
	"uk":                         "United Kingdom",
	"britain":                    "United Kingdom",
	"great britain":              "United Kingdom",
	"russia":                     "Russia",
	"china":                      "China",
	"india":                      "India",
	"japan":                      "Japan",
	"germany":                    "Germany",
	"deutschland":                "Germany",
	"france":                     "France",
	"italy":                      "Italy",
	"brazil":                     "Brazil",
	"brasil":                     "Brazil",
	"south africa":               "South Africa",
	"eswatini":                   "Eswatini",
	"rome":                       "Italy",
	"roman empire":               "Italy",
	"mediolanum (milan)":         "Italy",
	"siscia":                     "Croatia",
	"constantinople":             "Turkey",
	"nicomedia":                  "Turkey",
	"antioch":                    "Syria",
	"thessalonica":               "Greece",
	"ancient greece":             "Greece",
	"seleucid":                   "Syria",
	"seleucid empire":            "Syria",
	"ussr":                       "Russia",
	"yugoslavia":                 "Serbia",
	"rhodesia":                   "Zimbabwe",
	"czechoslovakia":             "Czechia",
	"east germany":               "Germany",
	"german democratic republic": "Germany",
	"phillipines":                "Philippines",
}

var countryRegions = map[string]string{
	// Africa
	"south africa":           RegionAfrica,
	"eswatini":               RegionAfrica,
	"kenya":                  RegionAfrica,
	"central african states": RegionAfrica,
	"mauritius":              RegionAfrica,
	"ghana":                  RegionAfrica,
	"rwanda":                 RegionAfrica,
	"zimbabwe":               RegionAfrica,
	"tanzania":               RegionAfrica,
	"mozambique":             RegionAfrica,
	"botswana":               RegionAfrica,
	"zambia":                 RegionAfrica,
	"eritrea":                RegionAfrica,
	"somalia":                RegionAfrica,
	"sudan":                  RegionAfrica,
	"malawi":                 RegionAfrica,
	"ethiopia":               RegionAfrica,
	"nigeria":                RegionAfrica,
	"egypt":                  RegionAfrica,
	"algeria":                RegionAfrica,
	"angola":                 RegionAfrica,
	"benin":                  RegionAfrica,
	"burkina faso":           RegionAfrica,
	"burundi":                RegionAfrica,
	"cabo verde":             RegionAfrica,
	"cameroon":               RegionAfrica,
	"chad":                   RegionAfrica,
	"comoros":                RegionAfrica,
	"congo (brazzaville)":    RegionAfrica,
	"congo (kinshasa)":       RegionAfrica,
	"djibouti":               RegionAfrica,
	"equatorial guinea":      RegionAfrica,
	"gabon":                  RegionAfrica,
	"gambia":                 RegionAfrica,
	"guinea":                 RegionAfrica,
	"guinea-bissau":          RegionAfrica,
	"lesotho":                RegionAfrica,
	"liberia":                RegionAfrica,
	"libya":                  RegionAfrica,
	"madagascar":             RegionAfrica,
	"mali":                   RegionAfrica,
	"mauritania":             RegionAfrica,
	"morocco":                RegionAfrica,
	"namibia":                RegionAfrica,
	"niger":                  RegionAfrica,
	"sao tome and principe":  RegionAfrica,
	"senegal":                RegionAfrica,
	"seychelles":             RegionAfrica,
	"sierra leone":           RegionAfrica,
	"south sudan":            RegionAfrica,
	"togo":                   RegionAfrica,
	"tunisia":                RegionAfrica,
	"uganda":                 RegionAfrica,

	// Asia
	"taiwan":                   RegionAsia,
	"india":                    RegionAsia,
	"china":                    RegionAsia,
	"hong kong":                RegionAsia,
	"japan":                    RegionAsia,
	"philippines":              RegionAsia,
	"united arab emirates":     RegionAsia,
	"israel":                   RegionAsia,
	"vietnam":                  RegionAsia,
	"bangladesh":               RegionAsia,
	"mongolia":                 RegionAsia,
	"myanmar (burma)":          RegionAsia,
	"cambodia":                 RegionAsia,
	"lebanon":                  RegionAsia,
	"uzbekistan":               RegionAsia,
	"indonesia":                RegionAsia,
	"laos":                     RegionAsia,
	"nepal":                    RegionAsia,
	"sri lanka":                RegionAsia,
	"iran":                     RegionAsia,
	"pakistan":                 RegionAsia,
	"jordan":                   RegionAsia,
	"kazakhstan":               RegionAsia,
	"kuwait":                   RegionAsia,
	"kyrgyzstan":               RegionAsia,
	"malaysia":                 RegionAsia,
	"maldives":                 RegionAsia,
	"north korea":              RegionAsia,
	"oman":                     RegionAsia,
	"palestine":                RegionAsia,
	"qatar":                    RegionAsia,
	"saudi arabia":             RegionAsia,
	"singapore":                RegionAsia,
	"south korea":              RegionAsia,
	"syria":                    RegionAsia,
	"tajikistan":               RegionAsia,
	"thailand":                 RegionAsia,
	"turkey":                   RegionAsia,
	"turkmenistan":             RegionAsia,
	"yemen":                    RegionAsia,
	"afghanistan":              RegionAsia,
	"azerbaijan":               RegionAsia,
	"bahrain":                  RegionAsia,
	"bhutan":                   RegionAsia,
	"brunei":                   RegionAsia,
	"east timor (timor-leste)": RegionAsia,
	"georgia":                  RegionAsia,
	"iraq":                     RegionAsia,
	"armenia":                  RegionAsia,

	// Europe
	"netherlands":                 RegionEurope,
	"united kingdom":              RegionEurope,
	"belgium":                     RegionEurope,
	"eu":                          RegionEurope,
	"ireland":                     RegionEurope,
	"spain":                       RegionEurope,
	"portugal":                    RegionEurope,
	"isle of man":                 RegionEurope,
	"germany":                     RegionEurope,
	"bulgaria":                    RegionEurope,
	"france":                      RegionEurope,
	"croatia":                     RegionEurope,
	"moldova":                     RegionEurope,
	"ukraine":                     RegionEurope,
	"denmark":                     RegionEurope,
	"finland":                     RegionEurope,
	"norway":                      RegionEurope,
	"san marino":                  RegionEurope,
	"switzerland":                 RegionEurope,
	"belarus":                     RegionEurope,
	"albania":                     RegionEurope,
	"andorra":                     RegionEurope,
	"austria":                     RegionEurope,
	"bosnia and herzegovina":      RegionEurope,
	"czechia (czech republic)":    RegionEurope,
	"czechia":                     RegionEurope,
	"estonia":                     RegionEurope,
	"greece":                      RegionEurope,
	"hungary":                     RegionEurope,
	"iceland":                     RegionEurope,
	"italy":                       RegionEurope,
	"latvia":                      RegionEurope,
	"liechtenstein":               RegionEurope,
	"lithuania":                   RegionEurope,
	"luxembourg":                  RegionEurope,
	"malta":                       RegionEurope,
	"monaco":                      RegionEurope,
	"montenegro":                  RegionEurope,
	"north macedonia (macedonia)": RegionEurope,
	"poland":                      RegionEurope,
	"romania":                     RegionEurope,
	"serbia":                      RegionEurope,
	"slovakia":                    RegionEurope,
	"slovenia":                    RegionEurope,
	"sweden":                      RegionEurope,
	"vatican city":                RegionEurope,
	"russia":                      RegionEurope,
	"cyprus":                      RegionEurope,
	"gibraltar":                   RegionEurope,
	"jersey":                      RegionEurope,
	"guernsey":                    RegionEurope,

	// North America
	"canada":                           RegionNorthAmerica,
	"united states":                    RegionNorthAmerica,
	"mexico":                           RegionNorthAmerica,
	"antigua and barbuda":              RegionNorthAmerica,
	"bahamas":                          RegionNorthAmerica,
	"barbados":                         RegionNorthAmerica,
	"belize":                           RegionNorthAmerica,
	"costa rica":                       RegionNorthAmerica,
	"cuba":                             RegionNorthAmerica,
	"dominica":                         RegionNorthAmerica,
	"dominican republic":               RegionNorthAmerica,
	"el salvador":                      RegionNorthAmerica,
	"grenada":                          RegionNorthAmerica,
	"guatemala":                        RegionNorthAmerica,
	"haiti":                            RegionNorthAmerica,
	"honduras":                         RegionNorthAmerica,
	"jamaica":                          RegionNorthAmerica,
	"nicaragua":                        RegionNorthAmerica,
	"panama":                           RegionNorthAmerica,
	"saint kitts and nevis":            RegionNorthAmerica,
	"saint lucia":                      RegionNorthAmerica,
	"saint vincent and the grenadines": RegionNorthAmerica,
	"trinidad and tobago":              RegionNorthAmerica,

	// South America
	"brazil":    RegionSouthAmerica,
	"argentina": RegionSouthAmerica,
	"peru":      RegionSouthAmerica,
	"colombia":  RegionSouthAmerica,
	"chile":     RegionSouthAmerica,
	"bolivia":   RegionSouthAmerica,
	"ecuador":   RegionSouthAmerica,
	"guyana":    RegionSouthAmerica,
	"paraguay":  RegionSouthAmerica,
	"suriname":  RegionSouthAmerica,
	"uruguay":   RegionSouthAmerica,
	"venezuela": RegionSouthAmerica,

	// Oceania
	"australia":        RegionOceania,
	"new zealand":      RegionOceania,
	"fiji":             RegionOceania,
	"kiribati":         RegionOceania,
	"marshall islands": RegionOceania,
	"micronesia":       RegionOceania,
	"nauru":            RegionOceania,
	"palau":            RegionOceania,
	"papua new guinea": RegionOceania,
	"samoa":            RegionOceania,
	"solomon islands":  RegionOceania,
	"tonga":            RegionOceania,
	"tuvalu":           RegionOceania,
	"vanuatu":          RegionOceania,

	// Ancient mints and defunct states
	"siscia":                     RegionAncient,
	"consz":                      RegionAncient,
	"rome":                       RegionAncient,
	"roman empire":               RegionAncient,
	"nicomedia":                  RegionAncient,
	"constantinople":             RegionAncient,
	"mediolanum (milan)":         RegionAncient,
	"antioch":                    RegionAncient,
	"ancient greece":             RegionAncient,
	"seleucid":                   RegionAncient,
	"seleucid empire":            RegionAncient,
	"thessalonica":               RegionAncient,
	"?":                          RegionAncient,
	"ussr":                       RegionAncient,
	"yugoslavia":                 RegionAncient,
	"rhodesia":                   RegionAncient,
	"czechoslovakia":             RegionAncient,
	"east germany":               RegionAncient,
	"german democratic republic": RegionAncient,
}
