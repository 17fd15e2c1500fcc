package domain

import "strings"

// Continent names used in the region column.
const (
	Africa       = "Africa"
	Antarctica   = "Antarctica"
	Asia         = "Asia"
	Europe       = "Europe"
	NorthAmerica = "North America"
	Oceania      = "Oceania"
	SouthAmerica = "South America"

	// UnknownContinent is returned for contested territories and codes the
	// table does not cover.
	UnknownContinent = "NA"
)

// continentMembers lists ISO 3166-1 alpha-2 codes per continent.
var continentMembers = map[string]string{
	Africa:
		"AO BF BI BJ BW CD CF CG CI CM CV DJ DZ EG EH ER " +
		"ET GA GH GM GN GQ GW KE KM LR LS LY MA MG ML MR " +
		"MU MW MZ NA NE NG RE RW SC SD SH SL SN SO SS ST " +
		"SZ TD TG TN TZ UG YT ZA ZM ZW",
	Antarctica: "AQ BV GS HM TF",
	Asia:
		"AE AF AM AZ BD BH BN BT CC CN CX CY GE HK ID IL " +
		"IN IO IQ IR JO JP KG KH KP KR KW KZ LA LB LK MM " +
		"MN MO MV MY NP OM PH PK PS QA SA SG SY TH TJ TL " +
		"TM TR TW UZ VN YE",
	Europe:
		"AD AL AT AX BA BE BG BY CH CZ DE DK EE ES FI FO " +
		"FR GB GG GI GR HR HU IE IM IS IT JE LI LT LU LV " +
		"MC MD ME MK MT NL NO PL PT RO RS RU SE SI SJ SK " +
		"SM UA VA",
	NorthAmerica:
		"AG AI AW BB BL BM BQ BS BZ CA CR CU CW DM DO GD " +
		"GL GP GT HN HT JM KN KY LC MF MQ MS MX NI PA PM " +
		"PR SV SX TC TT US VC VG VI",
	Oceania:
		"AS AU CK FJ FM GU KI MH MP NC NF NR NU NZ PF PG " +
		"PN PW SB TK TO TV UM VU WF WS",
	SouthAmerica: "AR BO BR CL CO EC FK GF GY PE PY SR UY VE",
}

var continentByCode = buildContinentIndex()

func buildContinentIndex() map[string]string {
	idx := make(map[string]string, 256)
	for continent, codes := range continentMembers {
		for _, code := range strings.Fields(codes) {
			idx[code] = continent
		}
	}
	return idx
}

// ContinentForCode maps a two-letter country code to its continent, or
// UnknownContinent when the code is empty or not in the table.
func ContinentForCode(code string) string {
	if c, ok := continentByCode[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return c
	}
	return UnknownContinent
}
