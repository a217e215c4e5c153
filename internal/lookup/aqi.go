package lookup

// AQI severity labels and color tokens, indexed by the upstream 1..5 level.
var (
	aqiLabels = [5]string{"Excelente", "Buena", "Moderada", "Deficiente", "Muy pobre"}
	aqiColors = [5]string{"#10b981", "#84cc16", "#eab308", "#f97316", "#dc2626"}
)

const (
	aqiUnknownLabel = "Desconocida"
	aqiNeutralColor = "#fff"
)

// DescribeAQI maps an AQI level to its severity label and color token.
// Levels outside 1..5 should not occur per the upstream contract but map
// to the unknown label and neutral color instead of panicking.
func DescribeAQI(level int) (label, color string) {
	if level < 1 || level > 5 {
		return aqiUnknownLabel, aqiNeutralColor
	}
	return aqiLabels[level-1], aqiColors[level-1]
}
