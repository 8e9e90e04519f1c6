package models

import "testing"

func TestIsValidUserRole(t *testing.T) {
	tests := []struct {
		role UserRole
		want bool
	}{
		{UserRoleAdmin, true},
		{UserRoleAgent, true},
		{UserRoleResident, true},
		{UserRole("SUPERUSER"), false},
		{UserRole("admin"), false},
		{UserRole(""), false},
	}

	for _, tt := range tests {
		if got := IsValidUserRole(tt.role); got != tt.want {
			t.Errorf("IsValidUserRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestCanManageProperties(t *testing.T) {
	tests := []struct {
		role UserRole
		want bool
	}{
		{UserRoleAdmin, true},
		{UserRoleAgent, true},
		{UserRoleResident, false},
		{UserRole(""), false},
	}

	for _, tt := range tests {
		if got := tt.role.CanManageProperties(); got != tt.want {
			t.Errorf("%q.CanManageProperties() = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestBaseBeforeCreateAssignsID(t *testing.T) {
	b := &Base{}
	if err := b.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate() error = %v", err)
	}
	if b.ID == "" {
		t.Error("BeforeCreate() left ID empty")
	}

	keep := &Base{ID: "preset"}
	if err := keep.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate() error = %v", err)
	}
	if keep.ID != "preset" {
		t.Errorf("BeforeCreate() overwrote ID: %q", keep.ID)
	}
}
