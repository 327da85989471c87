package analysis

// Indicator is a qualitative dysarthria screening tag attached to a segment
// whose metrics crossed a clinical threshold. A segment may carry several.
type Indicator string

// The fixed indicator set.
const (
	IndicatorSlowSpeech     Indicator = "slow_speech"
	IndicatorManyPauses     Indicator = "many_pauses"
	IndicatorLowDensity     Indicator = "low_density"
	IndicatorShortUtterance Indicator = "short_utterance"
)

// Classify maps one segment's metrics to its indicator set. Each axis is
// evaluated independently against the configured thresholds; the logic
// itself carries no threshold literals.
func (a *Analyzer) Classify(m SegmentMetrics) []Indicator {
	t := a.thresholds
	indicators := []Indicator{}

	if m.SpeechRateWPM.Below(t.SlowSpeechWPM) {
		indicators = append(indicators, IndicatorSlowSpeech)
	}
	if m.WordCount > 0 && m.PauseCount >= t.MinPauses {
		ratio := Applicable(float64(m.PauseCount) / float64(m.WordCount))
		if ratio.Above(t.PauseRatio) {
			indicators = append(indicators, IndicatorManyPauses)
		}
	}
	if m.SpeechDensity.Below(t.DensityFloor) {
		indicators = append(indicators, IndicatorLowDensity)
	}
	if m.WordCount < t.MinWordCount {
		indicators = append(indicators, IndicatorShortUtterance)
	}

	return indicators
}
