// Package render turns finalized and live window rows into terminal output.
// It is the only package that writes to stdout; logs go to stderr.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/yencarnacion/volume-delta/internal/window"
)

// Tone is the three-way color classification of a row.
type Tone int

const (
	ToneNeutral Tone = iota
	TonePositive
	ToneNegative
)

// ToneOf maps a spike value onto a display tone: positive means price rose
// while flow was imbalanced, negative means it fell, exact zero is neutral.
func ToneOf(spike float64) Tone {
	switch {
	case spike > 0:
		return TonePositive
	case spike < 0:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

const fieldWidth = 10

func padded(n int64) string {
	return fmt.Sprintf("%*s", fieldWidth, humanize.Comma(n))
}

// FormatRow renders one window as a fixed-width line: rounded spike, then
// buy/sell volumes and the raw delta, labeled with the window's wall-clock
// start time.
func FormatRow(f window.Finalized) string {
	return fmt.Sprintf("spk (%s):%s | Buy:%s | Sell:%s | VD:%s",
		f.Start.Format("15:04:05"),
		padded(int64(math.Round(f.Spike))),
		padded(f.Buy),
		padded(f.Sell),
		padded(f.Delta))
}

// Screen repaints the bounded finalized history plus one live row on every
// update, coloring rows green/yellow by spike sign. When the live flag goes
// false (feed retry budget exhausted) the live row is visibly marked stale.
type Screen struct {
	out  io.Writer
	live *atomic.Bool
	pos  *color.Color
	neg  *color.Color
}

// NewScreen builds a screen writing to out. live may be nil when there is no
// ingestion-health signal to display.
func NewScreen(out io.Writer, live *atomic.Bool) *Screen {
	return &Screen{
		out:  out,
		live: live,
		pos:  color.New(color.FgGreen),
		neg:  color.New(color.FgYellow),
	}
}

// Update repaints history plus the still-open live row.
func (s *Screen) Update(history []window.Finalized, live window.Finalized) {
	s.paint(history, &live)
}

// Close repaints after a window finalizes; the last history row is the
// window that just closed.
func (s *Screen) Close(history []window.Finalized) {
	s.paint(history, nil)
}

func (s *Screen) paint(history []window.Finalized, live *window.Finalized) {
	var b strings.Builder
	b.WriteString("\x1b[H\x1b[2J") // cursor home, clear screen
	for _, row := range history {
		b.WriteString(s.colorize(FormatRow(row), ToneOf(row.Spike)))
		b.WriteByte('\n')
	}
	if live != nil {
		line := FormatRow(*live)
		if s.live != nil && !s.live.Load() {
			line += "  [stale]"
		}
		b.WriteString(s.colorize(line, ToneOf(live.Spike)))
		b.WriteByte('\n')
	}
	fmt.Fprint(s.out, b.String())
}

func (s *Screen) colorize(line string, tone Tone) string {
	switch tone {
	case TonePositive:
		return s.pos.Sprint(line)
	case ToneNegative:
		return s.neg.Sprint(line)
	default:
		return line
	}
}

// Printer is the single-line tape: the live row overwrites itself in place
// and each close commits one permanent line. The delta column is colored
// yellow/red by its own sign.
type Printer struct {
	out io.Writer
	pos *color.Color
	neg *color.Color
}

// NewPrinter builds a printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out: out,
		pos: color.New(color.FgYellow),
		neg: color.New(color.FgRed),
	}
}

// Update redraws the live line in place.
func (p *Printer) Update(history []window.Finalized, live window.Finalized) {
	fmt.Fprintf(p.out, "\r%s", p.line(live))
}

// Close commits the finalized line.
func (p *Printer) Close(history []window.Finalized) {
	if len(history) == 0 {
		return
	}
	fmt.Fprintf(p.out, "\r%s\n", p.line(history[len(history)-1]))
}

func (p *Printer) line(f window.Finalized) string {
	deltaCol := padded(f.Delta)
	switch {
	case f.Delta > 0:
		deltaCol = p.pos.Sprint(deltaCol)
	case f.Delta < 0:
		deltaCol = p.neg.Sprint(deltaCol)
	}
	return fmt.Sprintf("vd (%s):%s  |  Buy:%s  |  Sell:%s",
		f.Start.Format("04:05"), deltaCol, padded(f.Buy), padded(f.Sell))
}
