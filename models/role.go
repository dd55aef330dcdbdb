package models

type Role string

const (
	RoleCommon Role = "common"
	RoleAuthor Role = "authors"
	RoleAdmin  Role = "admin"
)

type Capability string

const (
	CapViewPost         Capability = "view_post"
	CapAddPost          Capability = "add_post"
	CapChangePost       Capability = "change_post"
	CapDeletePost       Capability = "delete_post"
	CapSubscribe        Capability = "subscribe"
	CapComment          Capability = "comment"
	CapManageCategories Capability = "manage_categories"
)

var readerCapabilities = []Capability{CapViewPost, CapSubscribe, CapComment}

var roleCapabilities = map[Role]map[Capability]bool{
	RoleCommon: capabilitySet(readerCapabilities...),
	RoleAuthor: capabilitySet(append(readerCapabilities, CapAddPost, CapChangePost, CapDeletePost)...),
	RoleAdmin: capabilitySet(append(readerCapabilities,
		CapAddPost, CapChangePost, CapDeletePost, CapManageCategories)...),
}

func capabilitySet(caps ...Capability) map[Capability]bool {
	set := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return set
}

// Can reports whether role grants capability. Unknown roles grant nothing.
func Can(role Role, capability Capability) bool {
	return roleCapabilities[role][capability]
}

// IsAuthor reports whether the role may publish posts.
func (r Role) IsAuthor() bool {
	return Can(r, CapAddPost)
}

func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}
