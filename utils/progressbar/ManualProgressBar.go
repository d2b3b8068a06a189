// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ManualProgressBar implement progress bar functionality that must
// be manually managed. That is, the Display() function must be called
// whenever an updated progress bar should be printed.
//
// Progress may be added from several goroutines at once.
type ManualProgressBar struct {
	mu sync.Mutex

	width           int
	maxProgress     int
	currentProgress int
	startTime       time.Time
	out             io.Writer
}

// NewManualProgressBar returns a new ManualProgressBar that is width
// characters wide, reaches 100% after max steps of progress and is
// printed to out
func NewManualProgressBar(width, max int, out io.Writer) *ManualProgressBar {
	if max < 1 {
		max = 1
	}
	return &ManualProgressBar{
		width:       width,
		maxProgress: max,
		startTime:   time.Now(),
		out:         out,
	}
}

// Increment increments the interal progress counter
func (p *ManualProgressBar) Increment() {
	p.Add(1)
}

// Add adds n steps of progress, saturating at the maximum progress
func (p *ManualProgressBar) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.currentProgress += n
	if p.currentProgress > p.maxProgress {
		p.currentProgress = p.maxProgress
	}
}

// Fraction returns the fraction of the maximum progress made so far
func (p *ManualProgressBar) Fraction() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return float64(p.currentProgress) / float64(p.maxProgress)
}

// String returns the progress bar without the elapsed time
func (p *ManualProgressBar) String() string {
	fraction := p.Fraction()

	var bar strings.Builder
	bar.WriteString("|")
	filled := int(fraction * float64(p.width))
	bar.WriteString(strings.Repeat("█", filled))
	bar.WriteString(strings.Repeat(" ", p.width-filled))
	bar.WriteString(fmt.Sprintf("| [%.2f%%]", fraction*100))
	return bar.String()
}

// Display prints the progress bar over the previously displayed one
func (p *ManualProgressBar) Display() {
	elapsed := time.Since(p.startTime).Truncate(time.Second)
	fmt.Fprintf(p.out, "\r\033[K%v elapsed: %v", p.String(), elapsed)
}
