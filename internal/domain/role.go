package domain

// Role is the resolved acting role of a user, computed once per request and
// passed explicitly instead of probing for profile rows at every check.
// A user can hold both the admin and courier capability at the same time;
// a user with neither is a plain customer.
type Role struct {
	User    User
	Admin   *AdminProfile
	Courier *CourierProfile

	// Superuser admin access is independent of any profile row, so an
	// operator can regain control when profile data is inconsistent.
	superuser bool
}

// NewRole builds a Role from a user and whatever profiles were found.
func NewRole(u User, admin *AdminProfile, courier *CourierProfile) Role {
	return Role{User: u, Admin: admin, Courier: courier, superuser: u.IsSuperuser}
}

// IsAdmin reports whether the user may act as an in-app administrator.
func (r Role) IsAdmin() bool {
	if r.superuser {
		return true
	}
	return r.Admin != nil && r.Admin.Active
}

// IsAdminLike also covers staff accounts, which are excluded from customer
// actions (cart, checkout) without necessarily having dashboard access.
func (r Role) IsAdminLike() bool {
	return r.IsAdmin() || r.User.IsStaff
}

// IsCourier reports whether a courier profile exists, active or not.
func (r Role) IsCourier() bool {
	return r.Courier != nil
}

// IsActiveCourier requires the courier profile to be enabled.
func (r Role) IsActiveCourier() bool {
	return r.Courier != nil && r.Courier.Active
}

// IsCustomer reports whether the user acts as a plain customer.
func (r Role) IsCustomer() bool {
	return !r.IsAdminLike() && !r.IsCourier()
}
