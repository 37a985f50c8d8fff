// Package cmd implements the typirctl inspection CLI's cobra command
// tree, one command per file.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/typir/internal/demo"
	"github.com/cwbudde/typir/typir"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "typirctl",
	Short: "Inspect a demo typir engine instance",
	Long: `typirctl boots a small arithmetic-and-records demo language on top of
the typir type-engine library and prints what the engine computed: its
registered types, an overload-resolution trace, and a validation report.

It exists to exercise the engine end to end without a real host language
attached.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug-level) engine logging")
}

// buildEngine constructs the demo engine, wiring a logrus-backed
// typir.Logger at the level implied by --verbose.
func buildEngine() *demo.Engine {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.InfoLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return demo.Build(&logrusLogger{log})
}

// logrusLogger adapts a *logrus.Logger to typir.Logger.
type logrusLogger struct {
	log *logrus.Logger
}

func (l *logrusLogger) Debugf(format string, args ...any) { l.log.Debugf(format, args...) }
func (l *logrusLogger) Infof(format string, args ...any)  { l.log.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...any)  { l.log.Warnf(format, args...) }

var _ typir.Logger = (*logrusLogger)(nil)

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
