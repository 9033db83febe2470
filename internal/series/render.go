package series

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MaxPathPoints caps the number of points in a single rendered path element
const MaxPathPoints = 100

const (
	labelSpacing = 30 // pixels per time label
	marginLeft   = 48
	marginRight  = 4
	marginTop    = 8
	marginBottom = 48
)

// Render draws the series as an SVG fragment of the given size, with time
// labels relative to the current time.
func (s *Series) Render(width, height int) string {
	return s.RenderAt(time.Now(), width, height)
}

// RenderAt draws the series with time labels relative to now. Only valid
// samples are plotted, and an invalid sample ends the current line instead
// of being bridged, so an outage shows as a gap in the chart.
func (s *Series) RenderAt(now time.Time, width, height int) string {
	var b strings.Builder

	plotW := float64(width - marginLeft - marginRight)
	plotH := float64(height - marginTop - marginBottom)
	if plotW < 1 {
		plotW = 1
	}
	if plotH < 1 {
		plotH = 1
	}

	lo, hi := s.axisBounds()

	fmt.Fprintf(&b, `<svg class="chart" xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	b.WriteString("\n")
	fmt.Fprintf(&b, `<rect class="frame" x="%d" y="%d" width="%.0f" height="%.0f"/>`, marginLeft, marginTop, plotW, plotH)
	b.WriteString("\n")
	fmt.Fprintf(&b, `<text class="axis" x="%d" y="%d" text-anchor="end">%d</text>`, marginLeft-4, marginTop+10, hi)
	b.WriteString("\n")
	fmt.Fprintf(&b, `<text class="axis" x="%d" y="%.0f" text-anchor="end">%d</text>`, marginLeft-4, float64(marginTop)+plotH, lo)
	b.WriteString("\n")

	n := len(s.items)
	if n == 0 {
		b.WriteString("</svg>\n")
		return b.String()
	}

	oldest := s.items[0].Time
	span := s.items[n-1].Time.Sub(oldest)

	xOf := func(t time.Time) float64 {
		if span <= 0 {
			return float64(marginLeft) + plotW
		}
		return float64(marginLeft) + plotW*float64(t.Sub(oldest))/float64(span)
	}
	yOf := func(v int32) float64 {
		return float64(marginTop) + plotH - plotH*float64(int64(v)-lo)/float64(hi-lo)
	}

	// Time labels
	maxLabels := width / labelSpacing
	if maxLabels > 0 {
		step := (n + maxLabels - 1) / maxLabels
		if step < 1 {
			step = 1
		}
		labelY := float64(marginTop) + plotH + 6
		for i, count := n-1, 0; i >= 0 && count < maxLabels; i, count = i-step, count+1 {
			x := xOf(s.items[i].Time)
			fmt.Fprintf(&b, `<text class="time" x="%.1f" y="%.1f" transform="rotate(90 %.1f %.1f)">%s</text>`,
				x, labelY, x, labelY, AgeLabel(now.Sub(s.items[i].Time)))
			b.WriteString("\n")
		}
	}

	// Series paths, one run of consistent cadence at a time
	class := 0
	for top := n - 1; top >= 0; {
		start := s.FindSegmentStart(top)

		p := pathWriter{b: &b, class: class}
		for i := top; i >= start; i-- {
			it := s.items[i]
			if !it.Valid {
				p.lift()
				continue
			}
			p.point(xOf(it.Time), yOf(it.Value))
		}
		p.flush()

		class++
		top = start - 1
	}

	b.WriteString("</svg>\n")
	return b.String()
}

// pathWriter accumulates points into path elements of at most MaxPathPoints
// points each.
type pathWriter struct {
	b      *strings.Builder
	class  int
	d      strings.Builder
	points int
	penUp  bool
	lastX  float64
	lastY  float64
}

func (p *pathWriter) point(x, y float64) {
	if p.points == MaxPathPoints {
		p.flush()
		if !p.penUp {
			p.move(p.lastX, p.lastY)
		}
	}
	if p.points == 0 || p.penUp {
		p.move(x, y)
		p.penUp = false
	} else {
		fmt.Fprintf(&p.d, " L%.1f %.1f", x, y)
		p.points++
	}
	p.lastX, p.lastY = x, y
}

func (p *pathWriter) move(x, y float64) {
	if p.points > 0 {
		p.d.WriteByte(' ')
	}
	fmt.Fprintf(&p.d, "M%.1f %.1f", x, y)
	p.points++
}

func (p *pathWriter) lift() {
	p.penUp = true
}

func (p *pathWriter) flush() {
	if p.points == 0 {
		return
	}
	fmt.Fprintf(p.b, `<path class="series series%d" d="%s"/>`, p.class, p.d.String())
	p.b.WriteString("\n")
	p.d.Reset()
	p.points = 0
}

// axisBounds returns the nice lower and upper bounds of the valid values
func (s *Series) axisBounds() (int64, int64) {
	lo, hi := int64(0), int64(1)
	seen := false
	for _, it := range s.items {
		if !it.Valid {
			continue
		}
		v := int64(it.Value)
		if !seen {
			lo, hi = v, v
			seen = true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	lo = NiceFloor(lo)
	hi = NiceCeil(hi)
	if hi <= lo {
		hi = NiceCeil(lo + 1)
	}
	return lo, hi
}

// NiceCeil rounds v up to the nearest value on the 1, 2, 5, 10, 20, 50, ...
// ladder, mirrored for negative values. Zero stays zero.
func NiceCeil(v int64) int64 {
	if v > 0 {
		return ladderAtLeast(v)
	}
	return -ladderAtMost(-v)
}

// NiceFloor rounds v down to the nearest ladder value, mirrored for negative
// values. Zero stays zero.
func NiceFloor(v int64) int64 {
	if v >= 0 {
		return ladderAtMost(v)
	}
	return -ladderAtLeast(-v)
}

// ladderAtLeast returns the smallest ladder value >= v, for v > 0
func ladderAtLeast(v int64) int64 {
	c := int64(1)
	for step := 0; c < v && c < math.MaxInt64/3; step++ {
		c = nextLadder(c, step)
	}
	return c
}

// ladderAtMost returns the largest ladder value <= v, or 0 when v < 1
func ladderAtMost(v int64) int64 {
	if v < 1 {
		return 0
	}
	c := int64(1)
	for step := 0; c < math.MaxInt64/3; step++ {
		next := nextLadder(c, step)
		if next > v {
			break
		}
		c = next
	}
	return c
}

// nextLadder steps the ladder: x2, x2.5, x2, repeating from 1
func nextLadder(c int64, step int) int64 {
	if step%3 == 1 {
		return c * 5 / 2
	}
	return c * 2
}

// AgeLabel formats a sample age the way the chart axis shows it
func AgeLabel(age time.Duration) string {
	if age < time.Second {
		return "now"
	}
	if s := roundDiv(age, time.Second); s < 60 {
		return fmt.Sprintf("-%d s", s)
	}
	if m := roundDiv(age, time.Minute); m < 100 {
		return fmt.Sprintf("-%d min", m)
	}
	if h := roundDiv(age, time.Hour); h < 36 {
		return fmt.Sprintf("-%d h", h)
	}
	return fmt.Sprintf("-%d d", roundDiv(age, 24*time.Hour))
}

func roundDiv(d, unit time.Duration) int64 {
	return int64((d + unit/2) / unit)
}
