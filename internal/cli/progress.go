package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/Parumezan/toxidoc/internal/indexer"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

// CLIProgressReporter implements progress reporting with a progress bar on stderr.
type CLIProgressReporter struct {
	out     io.Writer
	logger  *logrus.Logger
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter. A quiet reporter
// reports nothing.
func NewCLIProgressReporter(out io.Writer, logger *logrus.Logger, quiet bool) indexer.ProgressReporter {
	if quiet {
		return &indexer.NoOpProgressReporter{}
	}
	return &CLIProgressReporter{out: out, logger: logger}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	c.logger.Debug("discovering header files")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(headerFiles int) {
	c.logger.WithField("files", headerFiles).Info("collected header files")
}

func (c *CLIProgressReporter) OnFileProcessingStart(totalFiles int) {
	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Parsing headers"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
	)
}

// OnFileProcessed is called from extraction workers; the bar serializes Add internally.
func (c *CLIProgressReporter) OnFileProcessed(fileName string) {
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(result *indexer.RunResult) {
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	c.logger.WithFields(logrus.Fields{
		"files":    len(result.Files),
		"entities": formatNumber(len(result.Entities)),
		"failures": len(result.Failures),
	}).Info(fmt.Sprintf("extraction complete in %.1fs", result.Duration.Seconds()))
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
