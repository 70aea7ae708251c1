package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lendshare/internal/model"
)

func TestParsePolicy(t *testing.T) {
	for name, want := range map[string]Policy{
		"":               AdminPolicy{},
		"admin":          AdminPolicy{},
		"open":           OpenPolicy{},
		"owner-or-admin": OwnerOrAdminPolicy{},
	} {
		got, err := ParsePolicy(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParsePolicy("everyone")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestPolicies(t *testing.T) {
	r := &model.Reservation{ID: 1, UserID: 2}
	owner := Caller{UserID: 2, Role: model.RoleUser}
	stranger := Caller{UserID: 3, Role: model.RoleUser}
	adminCaller := Caller{UserID: 9, Role: model.RoleAdmin}

	tests := []struct {
		name    string
		policy  Policy
		caller  Caller
		next    model.Status
		allowed bool
	}{
		{"open stranger accepts", OpenPolicy{}, stranger, model.StatusAccepted, true},
		{"admin policy admin", AdminPolicy{}, adminCaller, model.StatusAccepted, true},
		{"admin policy owner", AdminPolicy{}, owner, model.StatusCancelled, false},
		{"owner cancels", OwnerOrAdminPolicy{}, owner, model.StatusCancelled, true},
		{"owner accepts", OwnerOrAdminPolicy{}, owner, model.StatusAccepted, false},
		{"stranger cancels", OwnerOrAdminPolicy{}, stranger, model.StatusCancelled, false},
		{"admin accepts", OwnerOrAdminPolicy{}, adminCaller, model.StatusAccepted, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Authorize(tt.caller, r, tt.next)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, model.ErrForbidden)
			}
		})
	}
}
