package serviceImp

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"canaswarm/entities"
)

// justify explains a zone's action. A negative signed ROI reads as money to
// recover, anything else as an expected gain.
func justify(z entities.ManagementZone, roi float64) string {
	gap := z.YieldGapPct()
	if z.Status == entities.StatusOptimal {
		return fmt.Sprintf("Zone %s: Performing at %.0f%% of potential. Maintain current management.", z.ZoneID, 100-gap)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Zone %s: %.0f%% yield gap. ", z.ZoneID, gap)
	if roi < 0 {
		fmt.Fprintf(&b, "%s will recover %s/year", actionTitle(z.Recommendation.Action), brl(math.Abs(roi)))
		if p := z.FinancialImpact.PaybackMonths; p != nil {
			fmt.Fprintf(&b, " with %d-month payback", *p)
		}
	} else {
		fmt.Fprintf(&b, "Expected gain: %s/year", brl(roi))
	}
	b.WriteString(".")
	return b.String()
}

// actionTitle turns "soil_correction" into "Soil Correction".
func actionTitle(action string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(action, "_", " "))
}

func brl(v float64) string {
	return "R$ " + humanize.Comma(int64(math.Round(v)))
}
