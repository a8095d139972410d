package ui

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders samples as block characters, exactly width runes wide.
// Only the last width samples are shown; shorter input is left-padded with
// zeros. Values are scaled to the largest sample.
func Sparkline(data []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}
	pad := width - len(data)

	peak := 0.0
	for _, v := range data {
		peak = max(peak, v)
	}

	out := make([]rune, width)
	for i := range pad {
		out[i] = sparkBlocks[0]
	}
	top := len(sparkBlocks) - 1
	for i, v := range data {
		idx := 0
		if peak > 0 && v > 0 {
			idx = min(int(v/peak*float64(top)), top)
		}
		out[pad+i] = sparkBlocks[idx]
	}
	return string(out)
}
