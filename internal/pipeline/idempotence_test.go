package pipeline

import (
	"testing"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolveSkipsTerminalWithoutOverride(t *testing.T) {
	existing := &domain.Document{Status: domain.StatusCompleted}
	action, refresh := Resolve(existing, Seen{Subfolder: "inbox/a", ExternalMsgID: "m1"})
	assert.Equal(t, ActionSkip, action)
	assert.Equal(t, "inbox/a", refresh["subfolder"])
}

func TestResolveRequeuesWithIgnoreAlreadyExisting(t *testing.T) {
	existing := &domain.Document{Status: domain.StatusCompleted}
	action, _ := Resolve(existing, Seen{ControlCategory: domain.IgnoreAlreadyExisting})
	assert.Equal(t, ActionRequeue, action)
}

func TestResolveRequeuesNonTerminalStatus(t *testing.T) {
	existing := &domain.Document{Status: domain.StatusRegistrationSuccess}
	action, _ := Resolve(existing, Seen{})
	assert.Equal(t, ActionRequeue, action)
}
