package enums

import "fmt"

// RouteClass partitions every navigable path into exactly one access tier.
type RouteClass string

const (
	RouteClassPublic     RouteClass = "public"
	RouteClassAdmin      RouteClass = "admin"
	RouteClassSuperAdmin RouteClass = "super_admin"
)

var validRouteClasses = []RouteClass{
	RouteClassPublic,
	RouteClassAdmin,
	RouteClassSuperAdmin,
}

// String implements fmt.Stringer.
func (c RouteClass) String() string {
	return string(c)
}

// IsValid reports whether the value is a known RouteClass.
func (c RouteClass) IsValid() bool {
	for _, candidate := range validRouteClasses {
		if candidate == c {
			return true
		}
	}
	return false
}

// Permits reports whether a principal with the given role may enter the class.
func (c RouteClass) Permits(role Role) bool {
	switch c {
	case RouteClassPublic:
		return true
	case RouteClassAdmin:
		return role == RoleAdmin || role == RoleSuperAdmin
	case RouteClassSuperAdmin:
		return role == RoleSuperAdmin
	default:
		return false
	}
}

// ParseRouteClass converts raw input into a RouteClass.
func ParseRouteClass(value string) (RouteClass, error) {
	for _, candidate := range validRouteClasses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid route class %q", value)
}
