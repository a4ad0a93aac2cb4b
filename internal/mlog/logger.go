// Copyright (C) 2024, sectorkit contributors
//
// sectorkit is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// sectorkit is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with sectorkit.  If not, see <https://www.gnu.org/licenses/>.

// Central log (stdout/stderr) for the map core, mirrored after VigilantBSP's
// mylogger.go: a package-level logger rather than a per-call allocation,
// with a slot mechanism that suppresses a progress line (e.g. rebuild loop
// counters) identical to the one last written to the same slot.
package mlog

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Logger wraps stdout/stderr writers behind a mutex so interleaved rebuild
// and history activity never tears a line in half.
type Logger struct {
	mu        sync.Mutex
	verbosity int
	slots     map[string]string
}

func New() *Logger {
	return &Logger{slots: make(map[string]string)}
}

// Log is the package-level logger, same convention as VigilantBSP's
// package-level `Log`.
var Log = New()

var syslog = log.New(os.Stdout, "", 0)
var errlog = log.New(os.Stderr, "", 0)

// SetVerbosity controls how many Verbosef calls actually print; level 0 is
// always shown, increasing level gates increasingly chatty diagnostics.
func (l *Logger) SetVerbosity(v int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbosity = v
}

// Printf always prints, same as VigilantBSP's Log.Printf.
func (l *Logger) Printf(s string, a ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	syslog.Printf(s, a...)
}

// Verbosef only prints when the logger's verbosity is >= level.
func (l *Logger) Verbosef(level int, s string, a ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.verbosity < level {
		return
	}
	syslog.Printf(s, a...)
}

// Error writes to stderr without panicking. For true invariant violations,
// the map core wraps this with a typed error (see errors.go) rather than
// terminating the process.
func (l *Logger) Error(s string, a ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	errlog.Printf(s, a...)
}

// Fatal writes to stderr like Error, for the one case VigilantBSP's
// Log.Panic would terminate the process: an invariant violation. sectorkit
// never actually panics here - the map core marks itself corrupt and
// returns a typed InvariantError instead - so Fatal is Error under another
// name, kept distinct so call sites read the same way the teacher's do.
func (l *Logger) Fatal(s string, a ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	errlog.Printf(s, a...)
}

// Slot writes into a named slot, printing it only when the content changed
// since the last call under that slot name - used so a tight rebuild loop
// doesn't spam identical progress lines.
func (l *Logger) Slot(name, s string, a ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(s, a...)
	if l.slots[name] == msg {
		return
	}
	l.slots[name] = msg
	syslog.Print(msg)
}
