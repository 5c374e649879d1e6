// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ProgressBar implements a concurrent progress bar. Increments may
// come from many goroutines; the display is redrawn periodically in a
// separate goroutine so that it runs concurrently with all other
// processes.
type ProgressBar struct {
	// width determines the number of characters wide that the progress
	// bar should be
	width float64

	// maxProgress determines the number of times Increment() should
	// be called before the progress bar reaches 100%
	maxProgress float64

	mu              sync.Mutex
	currentProgress float64

	closeEvent chan struct{}
	closed     bool

	updateEvery time.Duration
}

// New returns a new progress bar that is width characters wide and
// reaches 100% capacity after max Increment() calls. The display is
// redrawn every updateEvery.
func New(width, max int, updateEvery time.Duration) *ProgressBar {
	return &ProgressBar{
		width:       float64(width),
		maxProgress: float64(max),
		closeEvent:  make(chan struct{}),
		updateEvery: updateEvery,
	}
}

// Increment increments the internal progress counter. Each time an
// iteration is performed, Increment should be called. Increment is
// safe for concurrent use.
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// progress returns the current progress counter
func (p *ProgressBar) progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentProgress
}

// Close closes the progress bar so that it will no longer display to
// the screen. This function also cleans up any resources the progress
// bar is using.
func (p *ProgressBar) Close() {
	if p.closed {
		panic("close: close on closed progress bar")
	}
	close(p.closeEvent)
	p.closed = true
	fmt.Println() // Jump to next line after printed pbar
}

// Display displays the progress bar on the screen. It should only be
// called once.
func (p *ProgressBar) Display() {
	go func() {
		tick := time.NewTicker(p.updateEvery)
		defer tick.Stop()

		var elapsedTime time.Duration
		var bar strings.Builder

		for {
			select {
			case <-tick.C:
				elapsedTime += p.updateEvery

			case <-p.closeEvent:
				return
			}

			currentProgress := p.progress()

			bar.Reset()
			bar.Write([]byte("|"))

			currentProg := currentProgress / p.maxProgress * p.width
			for i := 0.0; i < currentProg; i++ {
				bar.Write([]byte("█"))
			}
			for i := currentProg; i < p.width; i++ {
				bar.Write([]byte(" "))
			}
			bar.Write([]byte(fmt.Sprintf("| [%.2f%v | elapsed: %v]",
				currentProgress/p.maxProgress*100, "%",
				elapsedTime)))

			fmt.Printf("\n\033[1A\033[K%v", bar.String())
		}
	}()
}
