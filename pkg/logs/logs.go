package logs

import (
	"bytes"
	"fmt"
	"log"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/component-base/featuregate"
	"k8s.io/component-base/logs"
	logsapi "k8s.io/component-base/logs/api/v1"

	_ "k8s.io/component-base/logs/json/register"
)

// dsc-keys follows [Kubernetes Logging Conventions] and writes logs in
// [Kubernetes text logging format] by default. It does not support named
// levels (aka. severity), instead it uses arbitrary levels. Errors and
// warnings are logged to stderr and Info messages to stdout.
//
// Further reading:
//  - [Kubernetes logging conventions](https://github.com/kubernetes/community/blob/master/contributors/devel/sig-instrumentation/logging.md)
//  - [Kubernetes text logging format](https://github.com/kubernetes/community/blob/master/contributors/devel/sig-instrumentation/logging.md#text-logging-format)
//  - [Examples of using k8s.io/component-base/logs](https://github.com/kubernetes/kubernetes/tree/master/staging/src/k8s.io/component-base/logs/example),
//    upon which this code was based.

var (
	// All but the essential logging flags will be hidden. The hidden flags can
	// still be used, e.g. --log-json-split-stream=false.
	visibleFlagNames = sets.New[string]("v", "vmodule", "logging-format")
	// This default logging configuration will be updated with values from the
	// logging flags, even those that are hidden.
	configuration = logsapi.NewLoggingConfiguration()
	// Logging features will be added to this feature gate, but the
	// feature-gates flag will be hidden from the user.
	features = featuregate.NewFeatureGate()
)

const (
	// Standard log verbosity levels.
	// Use these instead of integers in dsc-keys code.
	Info  = 0
	Debug = 1
	Trace = 2
)

func init() {
	runtime.Must(logsapi.AddFeatureGates(features))
	// Turn on ALPHA options to enable the split-stream logging options.
	runtime.Must(features.OverrideDefault(logsapi.LoggingAlphaOptions, true))
}

// AddFlags adds log related flags to the supplied flag set.
//
// The split-stream options are enabled by default, so that errors are logged to
// stderr and info to stdout. Key listings printed by the fetch command go to
// stdout as well, so use --log-text-split-stream=false to keep them apart.
func AddFlags(fs *pflag.FlagSet) {
	var tfs pflag.FlagSet
	logsapi.AddFlags(configuration, &tfs)
	features.AddFlag(&tfs)
	tfs.VisitAll(func(f *pflag.Flag) {
		if !visibleFlagNames.Has(f.Name) {
			_ = tfs.MarkHidden(f.Name)
		}

		if f.Name == "logging-format" {
			f.Usage = `Sets the log format. Permitted formats: "json", "text".`
		}
		if f.Name == "log-text-split-stream" {
			f.DefValue = "true"
			runtime.Must(f.Value.Set("true"))
		}
		if f.Name == "log-json-split-stream" {
			f.DefValue = "true"
			runtime.Must(f.Value.Set("true"))
		}

		// `--v` is renamed to the more common `--log-level`.
		if f.Name == "v" {
			f.Name = "log-level"
			f.Shorthand = "v"
			f.Usage = fmt.Sprintf("%s. 0=Info, 1=Debug, 2=Trace. Use 6-9 for increasingly verbose HTTP request logging. (default: 0)", f.Usage)
		}
	})
	fs.AddFlagSet(&tfs)
}

// Initialize uses k8s.io/component-base/logs, to configure the following global
// loggers: log, slog, and klog. All are configured to write in the same format.
func Initialize() error {
	// This configures the global logger in klog *and* slog.
	logs.InitLogs()
	if err := logsapi.ValidateAndApply(configuration, features); err != nil {
		return fmt.Errorf("Error in logging configuration: %s", err)
	}

	// Thanks to logs.InitLogs, slog.Default now uses klog as its backend.
	slog := slog.Default()

	// Anything still writing to the global log.Default ends up in the same
	// stream and format as everything else.
	stdLog := log.Default()
	stdLog.SetOutput(LogToSlogWriter{Slog: slog, Source: "log"})

	return nil
}

type LogToSlogWriter struct {
	Slog   *slog.Logger
	Source string
}

func (w LogToSlogWriter) Write(p []byte) (n int, err error) {
	// log.Printf writes a newline at the end of the message, so we need to trim
	// it.
	p = bytes.TrimSuffix(p, []byte("\n"))

	message := string(p)
	if strings.Contains(message, "error") ||
		strings.Contains(message, "failed") {
		w.Slog.With("source", w.Source).Error(message)
	} else {
		w.Slog.With("source", w.Source).Info(message)
	}
	return len(p), nil
}
