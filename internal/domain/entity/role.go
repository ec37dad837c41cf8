package entity

// Roles válidos en el claim "role" del token. La emisión de identidades es externa.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleCourier  = "courier"
)
