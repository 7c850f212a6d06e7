package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// ProgressCallback receives transferred bytes, the total (-1 when unknown)
// and a percentage in [0, 100].
type ProgressCallback func(done, total int64, percentage float64)

// ProgressReader wraps an io.Reader and reports progress through a callback.
// Updates are throttled to steps of at least step percent.
type ProgressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	step     float64
	lastSent float64
	callback ProgressCallback
}

// NewProgressReader creates a reader that reports every 5%.
func NewProgressReader(reader io.Reader, total int64, callback ProgressCallback) *ProgressReader {
	return &ProgressReader{
		reader:   reader,
		total:    total,
		step:     5,
		lastSent: -1,
		callback: callback,
	}
}

// Read implements io.Reader and triggers the progress callback.
func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 {
		pr.read += int64(n)
		pr.report(false)
	}
	if err == io.EOF {
		pr.report(true)
	}
	return n, err
}

func (pr *ProgressReader) report(final bool) {
	if pr.callback == nil {
		return
	}
	if pr.total <= 0 {
		pr.callback(pr.read, -1, 0)
		return
	}

	percentage := float64(pr.read) / float64(pr.total) * 100
	if percentage > 100 {
		percentage = 100
	}
	if !final && percentage-pr.lastSent < pr.step && percentage < 100 {
		return
	}
	if final && percentage == pr.lastSent {
		return
	}
	pr.lastSent = percentage
	pr.callback(pr.read, pr.total, percentage)
}

// BytesRead returns the number of bytes read so far.
func (pr *ProgressReader) BytesRead() int64 {
	return pr.read
}

// CLIProgress draws a terminal progress bar on stderr.
type CLIProgress struct {
	bar *progressbar.ProgressBar
}

// NewCLIProgress starts a byte progress bar for total bytes.
func NewCLIProgress(total int64, description string) *CLIProgress {
	return &CLIProgress{
		bar: progressbar.NewOptions64(total,
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		),
	}
}

// Wrap returns a reader that advances the bar as r is consumed.
func (p *CLIProgress) Wrap(r io.Reader) io.Reader {
	reader := progressbar.NewReader(r, p.bar)
	return &reader
}

// Callback adapts the bar to a ProgressCallback.
func (p *CLIProgress) Callback() ProgressCallback {
	return func(done, _ int64, _ float64) {
		_ = p.bar.Set64(done)
	}
}

// Finish completes the bar.
func (p *CLIProgress) Finish() {
	_ = p.bar.Finish()
}

// ShowProgress reports whether a progress bar should be drawn for a
// transfer of size bytes: stderr must be a terminal and the size must reach
// the threshold.
func ShowProgress(size, threshold int64, quiet bool) bool {
	if quiet || size < threshold {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// FormatBytes formats a byte count with binary units, e.g. "1.5 KiB".
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(bytes))
}
