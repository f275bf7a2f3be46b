// Package notify defines the notification boundary for submitted
// results. It is an explicit injected dependency, not a module-global:
// whatever component emits a Result is handed a Notifier.
package notify

import (
	"context"
	"fmt"
	"log"
)

// ResultEvent describes one submitted result for the test's author.
type ResultEvent struct {
	RecipientID string `json:"recipientId"`
	SenderID    string `json:"senderId"`
	TestID      string `json:"testId"`
	TestTitle   string `json:"testTitle"`
	UserName    string `json:"userName"`
	Percentage  int    `json:"percentage"`
	Passed      bool   `json:"passed"`
}

// Message renders the human-readable notification text.
func (e ResultEvent) Message() string {
	return fmt.Sprintf("%s completed test %q with %d%%", e.UserName, e.TestTitle, e.Percentage)
}

// Notifier delivers result notifications to a downstream channel
// (pub/sub, email, in-app). Delivery is fire-and-forget from the
// grading core's perspective.
type Notifier interface {
	ResultSubmitted(ctx context.Context, event ResultEvent) error
}

// LogNotifier writes notifications to the process log. It is the
// default when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) ResultSubmitted(_ context.Context, event ResultEvent) error {
	log.Printf("notification for %s: %s", event.RecipientID, event.Message())
	return nil
}
