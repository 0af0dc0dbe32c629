package sim

import "github.com/ghodss/yaml"

// YearSummary is one calendar year's burden accounting.
type YearSummary struct {
	YLD     float64            `json:"yld"`
	YLLs    map[string]float64 `json:"yll_by_cause"`
	YLLTotal float64           `json:"yll_total"`
	DALY    float64            `json:"daly"`
}

// Summary is the run-manifest shape serialized at the end of a run,
// struct-tagged the way inmaputil/cmd.go tags its config structs, but
// used here to report results rather than to configure a run.
type Summary struct {
	Years         map[int]YearSummary `json:"years"`
	DeathsByCause map[string]int      `json:"deaths_by_cause"`
	IncidentCases map[string]int      `json:"incident_cases_by_cause"`
}

// Summary builds the Driver's current accumulators into a Summary
// value without mutating any state, so it may be called mid-run.
func (d *Driver) Summary() Summary {
	years := map[int]YearSummary{}
	seen := map[int]bool{}
	for y := range d.yld {
		seen[y] = true
	}
	for y := range d.yll {
		seen[y] = true
	}
	for y := range seen {
		yllByCause := d.yll[y]
		total := 0.0
		for _, v := range yllByCause {
			total += v
		}
		years[y] = YearSummary{
			YLD:      d.yld[y],
			YLLs:     yllByCause,
			YLLTotal: total,
			DALY:     d.yld[y] + total,
		}
	}
	return Summary{
		Years:         years,
		DeathsByCause: d.deaths,
		IncidentCases: d.incidentCases,
	}
}

// SummaryYAML renders Summary() as a YAML document.
func (d *Driver) SummaryYAML() ([]byte, error) {
	return yaml.Marshal(d.Summary())
}
