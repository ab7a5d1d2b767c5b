package introspect

import (
	"fmt"
	"strings"
)

// InjectionType classifies an injection point by element kind, access and
// static-ness.
type InjectionType int

const (
	PublicConstructor InjectionType = iota
	NonPublicConstructor
	PublicMemberMethod
	NonPublicMemberMethod
	PublicMemberField
	NonPublicMemberField
	PublicStaticMethod
	NonPublicStaticMethod
	PublicStaticField
	NonPublicStaticField
)

var injectionTypeNames = [...]string{
	PublicConstructor:     "public_constructor",
	NonPublicConstructor:  "non_public_constructor",
	PublicMemberMethod:    "public_member_method",
	NonPublicMemberMethod: "non_public_member_method",
	PublicMemberField:     "public_member_field",
	NonPublicMemberField:  "non_public_member_field",
	PublicStaticMethod:    "public_static_method",
	NonPublicStaticMethod: "non_public_static_method",
	PublicStaticField:     "public_static_field",
	NonPublicStaticField:  "non_public_static_field",
}

// AllInjectionTypes lists every injection type in declaration order.
func AllInjectionTypes() []InjectionType {
	out := make([]InjectionType, len(injectionTypeNames))
	for i := range out {
		out[i] = InjectionType(i)
	}
	return out
}

// String returns the snake_case name used in configuration files.
func (t InjectionType) String() string {
	if t < 0 || int(t) >= len(injectionTypeNames) {
		return fmt.Sprintf("injection_type(%d)", int(t))
	}
	return injectionTypeNames[t]
}

// ParseInjectionType parses a snake_case injection type name.
func ParseInjectionType(s string) (InjectionType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range injectionTypeNames {
		if n == name {
			return InjectionType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown injection type %q", s)
}

// Policy is the set of allowed injection types.
type Policy uint16

// AllowAll returns the policy allowing every injection type.
func AllowAll() Policy {
	return NewPolicy(AllInjectionTypes()...)
}

// NewPolicy returns the policy allowing exactly types.
func NewPolicy(types ...InjectionType) Policy {
	return Policy(0).With(types...)
}

// With returns p extended with types.
func (p Policy) With(types ...InjectionType) Policy {
	for _, t := range types {
		p |= 1 << uint(t)
	}
	return p
}

// Allows reports whether t is in the policy.
func (p Policy) Allows(t InjectionType) bool {
	return p&(1<<uint(t)) != 0
}

// Types lists the allowed injection types in declaration order.
func (p Policy) Types() []InjectionType {
	var out []InjectionType
	for _, t := range AllInjectionTypes() {
		if p.Allows(t) {
			out = append(out, t)
		}
	}
	return out
}

// Access is the visibility of an injection point.
type Access int

const (
	Public Access = iota
	NonPublic
)

func accessOf(exported bool) Access {
	if exported {
		return Public
	}
	return NonPublic
}

func pick(a Access, public, nonPublic InjectionType) InjectionType {
	if a == Public {
		return public
	}
	return nonPublic
}
