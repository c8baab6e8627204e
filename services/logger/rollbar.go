package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	rollbarerrs "github.com/rollbar/rollbar-go/errors"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
)

// RollbarLogger echoes to the standard logger and reports to Rollbar.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(rollbarerrs.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// prepare extracts an authenticated Identity from args (if any) to tag the
// Rollbar person, passing the rest through.
func (l RollbarLogger) prepare(args []interface{}) []interface{} {
	var identSet bool
	rest := make([]interface{}, 0, len(args))
	for _, arg := range args {
		if ident, ok := arg.(account.Identity); ok {
			if !identSet {
				rollbar.SetPerson(ident.ID, "", "")
				identSet = true
			}
			continue
		}
		rest = append(rest, arg)
	}
	if !identSet {
		rollbar.ClearPerson()
	}
	return rest
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rest := l.prepare(args)
	rollbar.Info(append([]interface{}{msg}, rest...)...)
	l.print("INFO: "+msg, rest)
}

func (l RollbarLogger) Error(msg string, err error, args ...interface{}) {
	rest := l.prepare(args)
	rollbar.Error(append([]interface{}{msg, err}, rest...)...)
	l.print("ERROR: "+msg, append([]interface{}{err}, rest...))
}

func (l RollbarLogger) print(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}
