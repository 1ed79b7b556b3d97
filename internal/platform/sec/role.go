// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// UserRole is the access level written into a token.
type UserRole string

const (
	RoleAdmin UserRole = "admin"

	// RoleShopper is implied for anonymous storefront visitors; no token carries it.
	RoleShopper UserRole = "shopper"
)

var roleRank = map[UserRole]int{
	RoleShopper: 1,
	RoleAdmin:   2,
}

// AtLeast reports whether r grants everything target does. Unknown roles grant nothing.
func (r UserRole) AtLeast(target UserRole) bool {
	rank, known := roleRank[r]
	return known && rank >= roleRank[target]
}
