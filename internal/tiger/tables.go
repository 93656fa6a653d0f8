// Package tiger reads Census TIGER/Line shapefiles into go-geom features and
// downloads the congressional district product from the Census Bureau.
package tiger

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultBaseURL is the Census Bureau TIGER/Line root.
const DefaultBaseURL = "https://www2.census.gov/geo/tiger"

// DistrictURL returns the national congressional district shapefile URL for a
// TIGER/Line vintage and Congress number, e.g. TIGER2024/CD/tl_2024_us_cd119.zip.
func DistrictURL(baseURL string, year, congress int) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return fmt.Sprintf("%s/TIGER%d/CD/tl_%d_us_cd%d.zip", strings.TrimRight(baseURL, "/"), year, year, congress)
}

// FIPSCodes maps state abbreviation to 2-digit FIPS code for all 50 states + DC.
var FIPSCodes = map[string]string{
	"AL": "01", "AK": "02", "AZ": "04", "AR": "05", "CA": "06",
	"CO": "08", "CT": "09", "DE": "10", "DC": "11", "FL": "12",
	"GA": "13", "HI": "15", "ID": "16", "IL": "17", "IN": "18",
	"IA": "19", "KS": "20", "KY": "21", "LA": "22", "ME": "23",
	"MD": "24", "MA": "25", "MI": "26", "MN": "27", "MS": "28",
	"MO": "29", "MT": "30", "NE": "31", "NV": "32", "NH": "33",
	"NJ": "34", "NM": "35", "NY": "36", "NC": "37", "ND": "38",
	"OH": "39", "OK": "40", "OR": "41", "PA": "42", "RI": "44",
	"SC": "45", "SD": "46", "TN": "47", "TX": "48", "UT": "49",
	"VT": "50", "VA": "51", "WA": "53", "WV": "54", "WI": "55",
	"WY": "56",
}

// territoryFIPS covers the outlying areas that share the district product.
var territoryFIPS = map[string]string{
	"60": "AS", "66": "GU", "69": "MP", "72": "PR", "78": "VI",
}

// abbrByFIPS is a reverse lookup from FIPS code to state abbreviation.
var abbrByFIPS = func() map[string]string {
	m := make(map[string]string, len(FIPSCodes)+len(territoryFIPS))
	for abbr, fips := range FIPSCodes {
		m[fips] = abbr
	}
	for fips, abbr := range territoryFIPS {
		m[fips] = abbr
	}
	return m
}()

// AbbrFromFIPS returns the postal abbreviation for a 2-digit FIPS code.
func AbbrFromFIPS(fips string) (string, bool) {
	abbr, ok := abbrByFIPS[fips]
	return abbr, ok
}

// AllStateFIPS returns the sorted FIPS codes of the 50 states + DC.
func AllStateFIPS() []string {
	codes := make([]string, 0, len(FIPSCodes))
	for _, fips := range FIPSCodes {
		codes = append(codes, fips)
	}
	sort.Strings(codes)
	return codes
}
