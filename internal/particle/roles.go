package particle

// Role names one of the five particle groups every creature is built
// from.
type Role string

const (
	RoleCore     Role = "CORE"
	RoleControl  Role = "CONTROL"
	RoleMovement Role = "MOVEMENT"
	RoleDefense  Role = "DEFENSE"
	RoleAttack   Role = "ATTACK"
)

// Roles is the canonical role order. Allocation, classification and
// trait assignment all iterate in this order; reordering it changes
// every derived creature.
var Roles = []Role{RoleCore, RoleControl, RoleMovement, RoleDefense, RoleAttack}

// Attribute is the derived stat a role's particle count feeds.
type Attribute string

const (
	AttrConstitution Attribute = "constitution"
	AttrIntelligence Attribute = "intelligence"
	AttrAgility      Attribute = "agility"
	AttrResilience   Attribute = "resilience"
	AttrStrength     Attribute = "strength"
)

// roleAttributes maps each role to its derived attribute and the base
// multiplier applied to the particle count.
var roleAttributes = map[Role]struct {
	attr Attribute
	mult float64
}{
	RoleCore:     {AttrConstitution, 1.2},
	RoleControl:  {AttrIntelligence, 1.0},
	RoleMovement: {AttrAgility, 1.1},
	RoleDefense:  {AttrResilience, 1.15},
	RoleAttack:   {AttrStrength, 1.25},
}

// AttributeFor returns the derived attribute for a role.
func (r Role) AttributeFor() Attribute {
	return roleAttributes[r].attr
}

// IsValid reports whether r is one of the five canonical roles.
func (r Role) IsValid() bool {
	_, ok := roleAttributes[r]
	return ok
}
