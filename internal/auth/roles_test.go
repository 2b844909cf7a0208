package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want RoleClass
	}{
		{"Pastora", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{"  pastor ", RoleAdmin},
		{"Productor", RoleProducer},
		{"producer", RoleProducer},
		{"líder", RoleLeader},
		{"LÍDER", RoleLeader},
		{"Leader", RoleLeader},
		{"Recepción", RoleReception},
		{"Colaborador", RoleCollaborator},
		{"Editor", RoleCollaborator},
		{"unknown", RoleCollaborator},
		{"", RoleCollaborator},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.raw))
		})
	}
}

func TestCanManageServices(t *testing.T) {
	allowed := []string{"Admin", "Pastor", "pastora", "PRODUCTOR", "Producer"}
	for _, role := range allowed {
		assert.True(t, CanManageServices(role), role)
	}

	denied := []string{"Líder", "leader", "Recepción", "Colaborador", "", "superuser"}
	for _, role := range denied {
		assert.False(t, CanManageServices(role), role)
	}
}

func TestNormalizeRole_Deterministic(t *testing.T) {
	// composed and decomposed forms of "Recepción" fold to the same key
	composed := "Recepción"
	decomposed := "Recepción"
	assert.Equal(t, "recepcion", NormalizeRole(composed))
	assert.Equal(t, NormalizeRole(composed), NormalizeRole(decomposed))
}
