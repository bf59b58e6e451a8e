package cli

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// spinner is a simple stderr progress indicator for one-shot lookups.
// Stop must be called before printing results to stdout.
type spinner struct {
	message string
	done    chan struct{}
	stopped chan struct{}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func startSpinner(message string) *spinner {
	s := &spinner{
		message: message,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.done:
			fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(os.Stderr, "\r%s %s", styleIconInfo.Render(frame), styleDim.Render(s.message))
		}
	}
}

func (s *spinner) stop() {
	close(s.done)
	<-s.stopped
}
