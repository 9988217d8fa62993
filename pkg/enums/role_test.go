package enums

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"user", RoleUser, false},
		{"ADMIN", RoleAdmin, false},
		{" admin ", RoleAdmin, false},
		{"owner", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseRole(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRole(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseRole(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestRoleIsAdmin(t *testing.T) {
	if RoleUser.IsAdmin() {
		t.Fatal("user role must not be admin")
	}
	if !RoleAdmin.IsAdmin() {
		t.Fatal("admin role must be admin")
	}
}
