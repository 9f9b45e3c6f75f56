package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Permission is a capability token such as "events.create".
// The set of valid tokens is closed; see AllPermissions.
type Permission string

const (
	PermEventsView   Permission = "events.view"
	PermEventsCreate Permission = "events.create"
	PermEventsEdit   Permission = "events.edit"
	PermEventsDelete Permission = "events.delete"

	PermVenuesView   Permission = "venues.view"
	PermVenuesCreate Permission = "venues.create"
	PermVenuesEdit   Permission = "venues.edit"
	PermVenuesDelete Permission = "venues.delete"

	PermTimeslotsManage Permission = "timeslots.manage"

	PermSignupsView   Permission = "signups.view"
	PermSignupsManage Permission = "signups.manage"

	PermUsersView   Permission = "users.view"
	PermUsersManage Permission = "users.manage"
	PermRolesManage Permission = "roles.manage"

	PermConfigManage Permission = "config.manage"
	PermAdminAccess  Permission = "admin.access"
)

var allPermissions = []Permission{
	PermEventsView, PermEventsCreate, PermEventsEdit, PermEventsDelete,
	PermVenuesView, PermVenuesCreate, PermVenuesEdit, PermVenuesDelete,
	PermTimeslotsManage,
	PermSignupsView, PermSignupsManage,
	PermUsersView, PermUsersManage, PermRolesManage,
	PermConfigManage, PermAdminAccess,
}

var knownPermissions = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(allPermissions))
	for _, p := range allPermissions {
		m[p] = struct{}{}
	}
	return m
}()

// AllPermissions returns every known permission token.
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// Valid reports whether p is a known token.
func (p Permission) Valid() bool {
	_, ok := knownPermissions[p]
	return ok
}

// ParsePermissions converts raw strings to permissions, rejecting unknown tokens.
// Duplicates are dropped and the result is sorted.
func ParsePermissions(raw []string) ([]Permission, error) {
	set := make(PermissionSet, len(raw))
	for _, r := range raw {
		p := Permission(strings.TrimSpace(r))
		if !p.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPermission, r)
		}
		set[p] = struct{}{}
	}
	return set.Sorted(), nil
}

// PermissionSet is a set of permission tokens.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given tokens.
func NewPermissionSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether p is in the set. There is no wildcard or hierarchy.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Union adds every permission of other into s and returns s.
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	for p := range other {
		s[p] = struct{}{}
	}
	return s
}

// Sorted returns the members in lexical order.
func (s PermissionSet) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EffectivePermissions unions the permissions of every active role.
func EffectivePermissions(roles []*Role) PermissionSet {
	set := make(PermissionSet)
	for _, r := range roles {
		if r == nil || !r.IsActive {
			continue
		}
		set.Union(NewPermissionSet(r.Permissions...))
	}
	return set
}
