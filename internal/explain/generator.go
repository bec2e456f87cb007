package explain

import (
	"fmt"

	"github.com/vistalabs/vista/internal/contracts"
)

// reasonTemplates holds exactly three "why" bullets per signal type.
// The lookup is exhaustive over the type enum; an unknown type falls back
// to the hold set.
var reasonTemplates = map[contracts.SignalType][3]string{
	contracts.SignalBuy: {
		"recent momentum and volume activity favor an upward move",
		"the stock trades near a technically oversold region",
		"liquidity conditions support entering a position",
	},
	contracts.SignalSell: {
		"momentum indicators point to an overbought condition",
		"recent price action shows weakening upward pressure",
		"risk of a pullback outweighs the remaining upside",
	},
	contracts.SignalHold: {
		"technical indicators are mixed without a clear direction",
		"price action stays inside its recent trading range",
		"neither momentum nor volume justifies a position change",
	},
}

// caveatTemplates holds exactly two risk disclosures per risk class.
var highRiskCaveats = [2]string{
	"this stock currently shows elevated volatility or thin liquidity",
	"position sizing should be reduced accordingly",
}

var standardCaveats = [2]string{
	"signals are advisory and derived from technical data only",
	"past indicator behavior does not guarantee future price moves",
}

// Generate builds the templated explanation for a signal. It is
// deterministic given (type, risk, confidence): three reasons, two
// caveats, one interpolated summary line.
func Generate(sig *contracts.Signal) *contracts.Explanation {
	reasons, ok := reasonTemplates[sig.Type]
	if !ok {
		reasons = reasonTemplates[contracts.SignalHold]
	}

	caveats := standardCaveats
	if sig.RiskLevel == contracts.RiskHigh {
		caveats = highRiskCaveats
	}

	return &contracts.Explanation{
		SignalID: sig.ID,
		Reasons:  reasons[:],
		Caveats:  caveats[:],
		Summary:  fmt.Sprintf("signal %s with confidence ≈%d%% based on technical indicators", sig.Type, sig.Confidence),
	}
}
