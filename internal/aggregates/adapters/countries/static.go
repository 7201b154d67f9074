// Package countries holds the read-only ISO-3166 alpha-3 name table.
package countries

import (
	"strings"

	"dashboard-aggregates-service/internal/aggregates/core/domain"
	"dashboard-aggregates-service/internal/aggregates/core/ports"
)

// Static resolves codes from a fixed table. Safe for concurrent use.
type Static struct {
	names map[string]string
}

var _ ports.CountryLookupPort = (*Static)(nil)

// NewStatic returns the built-in table. extra entries are added on top, e.g.
// for territories the table does not list.
func NewStatic(extra map[string]string) *Static {
	names := make(map[string]string, len(iso3166)+len(extra)+1)
	for code, name := range iso3166 {
		names[code] = name
	}
	for code, name := range extra {
		names[strings.ToUpper(code)] = name
	}
	names[domain.UnknownCountry] = "Unknown"
	return &Static{names: names}
}

func (s *Static) Name(code string) (string, bool) {
	name, ok := s.names[strings.ToUpper(code)]
	return name, ok
}

func (s *Static) Known(code string) bool {
	_, ok := s.names[strings.ToUpper(code)]
	return ok
}

// Codes lists every known code except UnknownCountry, in no particular order.
func (s *Static) Codes() []string {
	codes := make([]string, 0, len(s.names))
	for code := range s.names {
		if code != domain.UnknownCountry {
			codes = append(codes, code)
		}
	}
	return codes
}

var iso3166 = map[string]string{
	"ARE": "United Arab Emirates",
	"ARG": "Argentina",
	"AUS": "Australia",
	"AUT": "Austria",
	"BEL": "Belgium",
	"BGD": "Bangladesh",
	"BGR": "Bulgaria",
	"BRA": "Brazil",
	"CAN": "Canada",
	"CHE": "Switzerland",
	"CHL": "Chile",
	"CHN": "China",
	"COL": "Colombia",
	"CZE": "Czechia",
	"DEU": "Germany",
	"DNK": "Denmark",
	"EGY": "Egypt",
	"ESP": "Spain",
	"EST": "Estonia",
	"FIN": "Finland",
	"FRA": "France",
	"GBR": "United Kingdom",
	"GRC": "Greece",
	"HKG": "Hong Kong",
	"HRV": "Croatia",
	"HUN": "Hungary",
	"IDN": "Indonesia",
	"IND": "India",
	"IRL": "Ireland",
	"ISL": "Iceland",
	"ISR": "Israel",
	"ITA": "Italy",
	"JPN": "Japan",
	"KEN": "Kenya",
	"KOR": "South Korea",
	"LTU": "Lithuania",
	"LUX": "Luxembourg",
	"LVA": "Latvia",
	"MAR": "Morocco",
	"MEX": "Mexico",
	"MYS": "Malaysia",
	"NGA": "Nigeria",
	"NLD": "Netherlands",
	"NOR": "Norway",
	"NZL": "New Zealand",
	"PAK": "Pakistan",
	"PER": "Peru",
	"PHL": "Philippines",
	"POL": "Poland",
	"PRT": "Portugal",
	"ROU": "Romania",
	"SAU": "Saudi Arabia",
	"SGP": "Singapore",
	"SRB": "Serbia",
	"SVK": "Slovakia",
	"SVN": "Slovenia",
	"SWE": "Sweden",
	"THA": "Thailand",
	"TUR": "Türkiye",
	"TWN": "Taiwan",
	"UKR": "Ukraine",
	"USA": "United States",
	"VNM": "Viet Nam",
	"ZAF": "South Africa",
}
