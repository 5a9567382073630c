package evaluator

// Performance labels shared by the communication and technical results.
const (
	LabelExcellent = "Excellent"
	LabelGood      = "Good"
	LabelAverage   = "Average"
	LabelPoor      = "Poor"
)

var communicationFeedback = map[string]string{
	LabelExcellent: "You demonstrated outstanding communication skills across all task types. Your structure, pacing, and professional delivery are top-tier.",
	LabelGood:      "Your communication is clear and effective. With a bit more focus on using structural connectors, you can reach an excellent level.",
	LabelAverage:   "You made a solid attempt and are understandable. Focus on organizing your thoughts before speaking to improve flow.",
	LabelPoor:      "Keep practicing! Focus on extending your speaking time and using more structured points to explain your ideas.",
}

var testFeedback = map[string]string{
	LabelExcellent: "Excellent performance.",
	LabelGood:      "Good grasp of concepts at this difficulty level.",
	LabelAverage:   "You show average understanding with gaps.",
	LabelPoor:      "You need stronger fundamentals in this subject.",
}

// Percentage returns total/max*100, or 0 when max is not positive.
func Percentage(total, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return total / max * 100
}

// PerformanceLabel maps a communication total to Excellent (>=85%), Good (>=70%),
// Average (>=40%) or Poor.
func PerformanceLabel(total, max float64) string {
	switch p := Percentage(total, max); {
	case p >= 85:
		return LabelExcellent
	case p >= 70:
		return LabelGood
	case p >= 40:
		return LabelAverage
	default:
		return LabelPoor
	}
}

// CommunicationFeedback is the overall text for a communication label.
func CommunicationFeedback(label string) string {
	if f, ok := communicationFeedback[label]; ok {
		return f
	}
	return communicationFeedback[LabelPoor]
}

// TestLabel maps a technical test accuracy (0-100) to a label and message.
func TestLabel(accuracy float64) (label, message string) {
	switch {
	case accuracy >= 90:
		label = LabelExcellent
	case accuracy >= 70:
		label = LabelGood
	case accuracy >= 40:
		label = LabelAverage
	default:
		label = LabelPoor
	}
	return label, testFeedback[label]
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 { return round1(v) }
