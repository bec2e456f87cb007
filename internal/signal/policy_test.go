package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyDeniesEveryActor(t *testing.T) {
	policy := NewPolicy()

	actors := []Actor{
		{ID: "u1", Role: RoleUser},
		{ID: "a1", Role: RoleAdmin},
		{ID: "s1", Role: RoleSystem},
		{ID: "", Role: "unknown"},
	}

	for _, actor := range actors {
		assert.ErrorIs(t, policy.CanCreate(actor), ErrManualSignalWrite, "create by %s", actor.Role)
		assert.ErrorIs(t, policy.CanUpdate(actor), ErrManualSignalWrite, "update by %s", actor.Role)
		assert.ErrorIs(t, policy.CanDelete(actor), ErrManualSignalWrite, "delete by %s", actor.Role)
	}
}
