package progressbar

import (
	"bytes"
	"strings"
	"testing"
)

func TestManualProgressBar(t *testing.T) {
	var out bytes.Buffer
	p := NewManualProgressBar(&out, 10, 4)

	for i := 0; i < 6; i++ {
		p.Increment()
	}
	if p.Progress() != 1 {
		t.Errorf("progress want(1) have(%v)", p.Progress())
	}

	p.Display()
	if !strings.Contains(out.String(), "100.00%") {
		t.Errorf("display missing percentage: %q", out.String())
	}
	if n := strings.Count(p.String(), "█"); n != 10 {
		t.Errorf("filled width want(10) have(%v)", n)
	}
}

func TestManualProgressBarPartial(t *testing.T) {
	p := NewManualProgressBar(&bytes.Buffer{}, 8, 4)
	p.Increment()

	if n := strings.Count(p.String(), "█"); n != 2 {
		t.Errorf("filled width want(2) have(%v)", n)
	}
}
