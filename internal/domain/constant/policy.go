package constant

import (
	"fmt"
	"strings"
)

// RecoveryPolicy decides what happens at startup to an active reminder whose
// fire time passed while the process was down.
type RecoveryPolicy string

const (
	// RecoverySkip deletes overdue one-shots and moves overdue recurring
	// reminders to their next future occurrence without firing.
	RecoverySkip RecoveryPolicy = "skip"
	// RecoveryFire fires each overdue recurring reminder once, right away,
	// then moves it on. Overdue one-shots are deleted as under skip.
	RecoveryFire RecoveryPolicy = "fire"
	// RecoveryDrop deletes every overdue reminder, recurring or not.
	RecoveryDrop RecoveryPolicy = "drop"
)

// ParseRecoveryPolicy parses a policy name, case-insensitively.
func ParseRecoveryPolicy(s string) (RecoveryPolicy, error) {
	switch p := RecoveryPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case RecoverySkip, RecoveryFire, RecoveryDrop:
		return p, nil
	case "":
		return RecoverySkip, nil
	default:
		return "", fmt.Errorf("unknown recovery policy %q", s)
	}
}

func (p RecoveryPolicy) String() string {
	return string(p)
}
