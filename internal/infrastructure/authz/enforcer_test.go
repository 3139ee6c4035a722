package authz_test

import (
	"context"
	"testing"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/authz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnforcer_CanPerform(t *testing.T) {
	tests := []struct {
		name   string
		role   string
		action string
		want   bool
	}{
		{name: "admin may archive", role: authz.RoleAdmin, action: "archive", want: true},
		{name: "admin may merge", role: authz.RoleAdmin, action: "merge", want: true},
		{name: "editor may verify", role: authz.RoleEditor, action: "verify", want: true},
		{name: "editor may not archive", role: authz.RoleEditor, action: "archive", want: false},
		{name: "editor may not merge", role: authz.RoleEditor, action: "merge", want: false},
		{name: "viewer may verify", role: authz.RoleViewer, action: "verify", want: true},
		{name: "viewer may not pin", role: authz.RoleViewer, action: "pin", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enforcer, err := authz.NewEnforcer()
			require.NoError(t, err)

			actor := "actor-" + tt.role
			require.NoError(t, enforcer.AssignRole(actor, tt.role))

			allowed, err := enforcer.CanPerform(context.Background(), actor, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestEnforcer_CanPerform_UnknownActorIsDenied(t *testing.T) {
	enforcer, err := authz.NewEnforcer()
	require.NoError(t, err)

	allowed, err := enforcer.CanPerform(context.Background(), "nobody", "verify")
	require.NoError(t, err)
	assert.False(t, allowed)
}
