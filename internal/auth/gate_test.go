package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-service/internal/auth"
	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/token"
)

func TestAuthorizeIsRoleMembership(t *testing.T) {
	tests := []struct {
		name    string
		role    model.Role
		allowed []model.Role
		want    bool
	}{
		{"admin on admin-only", model.RoleAdmin, []model.Role{model.RoleAdmin}, true},
		{"customer on admin-only", model.RoleCustomer, []model.Role{model.RoleAdmin}, false},
		{"manager in admin+manager", model.RoleManager, []model.Role{model.RoleAdmin, model.RoleManager}, true},
		{"customer in admin+manager", model.RoleCustomer, []model.Role{model.RoleAdmin, model.RoleManager}, false},
		{"empty allowed set denies everyone", model.RoleAdmin, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := token.Payload{UserID: 1, Role: tt.role}
			require.Equal(t, tt.want, auth.Authorize(p, tt.allowed...))
		})
	}
}

func TestAuthorizeIgnoresEverythingButRole(t *testing.T) {
	// Same role, wildly different identity fields: the decision must not move.
	a := token.Payload{UserID: 1, Role: model.RoleManager}
	b := token.Payload{UserID: 999, Role: model.RoleManager, RecordID: 42}
	require.Equal(t,
		auth.Authorize(a, model.RoleManager),
		auth.Authorize(b, model.RoleManager))
}
