package role

import "testing"

func TestLevel(t *testing.T) {
	tests := []struct {
		role string
		want int
	}{
		{ShieldCircle, 1},
		{StudyCircle, 2},
		{TeamCore, 3},
		{VicePresident, 4},
		{President, 5},
		{"", 0},
		{"godfather", 0},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := Level(tt.role); got != tt.want {
				t.Errorf("Level(%q) = %d, want %d", tt.role, got, tt.want)
			}
		})
	}
}

func TestLevel_Injective(t *testing.T) {
	seen := make(map[int]string)
	for _, r := range All {
		l := Level(r)
		if l == 0 {
			t.Errorf("Level(%q) = 0, every known role must have a positive level", r)
		}
		if other, ok := seen[l]; ok {
			t.Errorf("Level(%q) == Level(%q) == %d, levels must be distinct", r, other, l)
		}
		seen[l] = r
	}
}

func TestCanAccess_MatchesLevels(t *testing.T) {
	for _, r1 := range All {
		for _, r2 := range All {
			want := Level(r1) >= Level(r2)
			if got := CanAccess(r1, r2); got != want {
				t.Errorf("CanAccess(%q, %q) = %v, want %v", r1, r2, got, want)
			}
		}
	}
}

func TestCanAccess_Reflexive(t *testing.T) {
	for _, r := range All {
		if !CanAccess(r, r) {
			t.Errorf("CanAccess(%q, %q) = false, want true", r, r)
		}
	}
}

func TestCanAccess_Monotonic(t *testing.T) {
	// If r1 can access r2, it can access every role at or below r2.
	for _, r1 := range All {
		for _, r2 := range All {
			if !CanAccess(r1, r2) {
				continue
			}
			for _, r3 := range All {
				if Level(r3) <= Level(r2) && !CanAccess(r1, r3) {
					t.Errorf("CanAccess(%q, %q) holds but CanAccess(%q, %q) does not", r1, r2, r1, r3)
				}
			}
		}
	}
}

func TestCanAccess_UnknownRole(t *testing.T) {
	if CanAccess("nobody", ShieldCircle) {
		t.Error("unknown user role should be denied")
	}
	if !CanAccess(ShieldCircle, "nobody") {
		t.Error("unknown required role maps to level 0, any member role passes")
	}
}

func TestIsAdmin(t *testing.T) {
	admins := map[string]bool{President: true, VicePresident: true}
	for _, r := range All {
		if got := IsAdmin(r); got != admins[r] {
			t.Errorf("IsAdmin(%q) = %v, want %v", r, got, admins[r])
		}
	}
}

func TestIcon_Fallback(t *testing.T) {
	for _, r := range All {
		if Icon(r) == "💬" {
			t.Errorf("Icon(%q) returned the fallback icon", r)
		}
	}
	if Icon("unknown") != "💬" {
		t.Error("Icon for unknown role should fall back to the generic icon")
	}
}
