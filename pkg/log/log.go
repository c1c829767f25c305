// Copyright The CPU Balance Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"k8s.io/klog/v2"
)

// Logger produces source-tagged log messages.
type Logger interface {
	// Debug formats and emits a debug message, if debugging is
	// enabled for the source.
	Debug(format string, args ...interface{})
	// Info formats and emits an informational message.
	Info(format string, args ...interface{})
	// Warn formats and emits a warning message.
	Warn(format string, args ...interface{})
	// Error formats and emits an error message.
	Error(format string, args ...interface{})
	// Fatal formats and emits an error message, then exits.
	Fatal(format string, args ...interface{})
	// DebugEnabled checks if debug messages are enabled for the source.
	DebugEnabled() bool
	// Source returns the source of this Logger.
	Source() string
}

const (
	// DefaultSource is the source of the default Logger.
	DefaultSource = "default"
	// debugEnvVar is the environment variable used to seed debugging flags.
	debugEnvVar = "LOGGER_DEBUG"
)

type logger struct {
	source string
	prefix string
}

var (
	lock    sync.RWMutex
	loggers = map[string]logger{}
	debug   = map[string]bool{}
	deflog  = newLogger("")
)

// Default returns the default Logger.
func Default() Logger {
	return deflog
}

// Get returns the Logger for the given source, creating one on first use.
func Get(source string) Logger {
	lock.Lock()
	defer lock.Unlock()

	source = strings.TrimSpace(source)
	l, ok := loggers[source]
	if !ok {
		l = newLogger(source)
		loggers[source] = l
	}

	return l
}

// NewLogger is an alias for Get.
func NewLogger(source string) Logger {
	return Get(source)
}

// SetDebug enables or disables debug messages for the given source. The
// source "*" (or "all") controls all sources without an explicit setting.
func SetDebug(source string, enabled bool) {
	lock.Lock()
	defer lock.Unlock()

	if source == "all" {
		source = "*"
	}
	debug[source] = enabled
}

// InitFlags registers the klog command line flags with the given flag set,
// or with the default one if nil.
func InitFlags(fs *flag.FlagSet) {
	if fs == nil {
		fs = flag.CommandLine
	}
	klog.InitFlags(fs)
}

// Flush flushes any buffered log output.
func Flush() {
	klog.Flush()
}

func newLogger(source string) logger {
	l := logger{source: source}
	if source != "" {
		l.prefix = source + ": "
	}
	return l
}

func (l logger) format(format string, args ...interface{}) string {
	return l.prefix + fmt.Sprintf(format, args...)
}

func (l logger) Debug(format string, args ...interface{}) {
	if !l.DebugEnabled() {
		return
	}
	klog.InfoDepth(1, l.format(format, args...))
}

func (l logger) Info(format string, args ...interface{}) {
	klog.InfoDepth(1, l.format(format, args...))
}

func (l logger) Warn(format string, args ...interface{}) {
	klog.WarningDepth(1, l.format(format, args...))
}

func (l logger) Error(format string, args ...interface{}) {
	klog.ErrorDepth(1, l.format(format, args...))
}

func (l logger) Fatal(format string, args ...interface{}) {
	klog.ExitDepth(1, l.format(format, args...))
}

func (l logger) DebugEnabled() bool {
	lock.RLock()
	defer lock.RUnlock()

	if enabled, ok := debug[l.source]; ok {
		return enabled
	}
	return debug["*"]
}

func (l logger) Source() string {
	if l.source == "" {
		return DefaultSource
	}
	return l.source
}

// Seed debugging flags from the environment.
func init() {
	value, ok := os.LookupEnv(debugEnvVar)
	if !ok {
		return
	}
	for _, source := range strings.Split(value, ",") {
		if source = strings.TrimSpace(source); source != "" {
			SetDebug(source, true)
		}
	}
}
