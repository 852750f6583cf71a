package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoticeIsExpired(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	open := &Notice{}
	assert.False(t, open.IsExpired(now))

	expiry := now.AddDate(0, 0, 7)
	dated := &Notice{ExpiresAt: &expiry}
	assert.False(t, dated.IsExpired(now))
	assert.False(t, dated.IsExpired(expiry))
	assert.True(t, dated.IsExpired(expiry.Add(time.Second)))
}

func TestNoticeTargets(t *testing.T) {
	tests := []struct {
		name         string
		targetRoles  []Role
		targetDepts  []int64
		role         Role
		departmentID int64
		want         bool
	}{
		{"empty sets match everyone", nil, nil, RoleStudent, 3, true},
		{"role match", []Role{RoleStudent}, nil, RoleStudent, 0, true},
		{"role mismatch", []Role{RoleStudent}, nil, RoleFaculty, 0, false},
		{"department match", nil, []int64{3, 5}, RoleStudent, 5, true},
		{"department mismatch", nil, []int64{3, 5}, RoleStudent, 7, false},
		{"both sets must match", []Role{RoleStudent}, []int64{3}, RoleStudent, 9, false},
		{"both sets matching", []Role{RoleStudent, RoleFaculty}, []int64{3}, RoleFaculty, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Notice{TargetRoles: tt.targetRoles, TargetDepts: tt.targetDepts}
			assert.Equal(t, tt.want, n.Targets(tt.role, tt.departmentID))
		})
	}
}
