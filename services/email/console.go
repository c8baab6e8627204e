package emailsvc

import (
	"fmt"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
)

// consoleService dumps messages to the log instead of sending them;
// used in development and tests.
type consoleService struct {
	log core.Logger
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(log core.Logger) *consoleService {
	return &consoleService{log: log}
}

func (svc *consoleService) SendMessages(messages ...*core.EmailMessage) error {
	for _, msg := range messages {
		svc.log.Info(fmt.Sprintf("email to %d recipient(s) - subject: %q\n%s", len(msg.To), msg.Subject, msg.BodyText))
	}
	return nil
}
