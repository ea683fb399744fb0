package users

import "github.com/elousi1010/quanlyveso-sub000/token"

// Resources named in permission profiles
const (
	ResourceTickets       = "tickets"
	ResourceAgents        = "agents"
	ResourceSellers       = "sellers"
	ResourceTransactions  = "transactions"
	ResourceReports       = "reports"
	ResourceOrganizations = "organizations"
)

const (
	all      = int(token.ActionRead | token.ActionCreate | token.ActionUpdate | token.ActionDelete)
	readOnly = int(token.ActionRead)
	noDelete = int(token.ActionRead | token.ActionCreate | token.ActionUpdate)
)

// DefaultPermission returns the permission profile a role gets when the
// account has none of its own. Unknown roles get nil.
func DefaultPermission(role token.Role) *token.Permission {
	switch role {
	case token.RoleAdmin:
		return &token.Permission{
			Code: "admin",
			Name: "Administrator",
			Actions: map[string]int{
				ResourceTickets:       all,
				ResourceAgents:        all,
				ResourceSellers:       all,
				ResourceTransactions:  all,
				ResourceReports:       all,
				ResourceOrganizations: all,
			},
		}
	case token.RoleManager:
		return &token.Permission{
			Code: "manager",
			Name: "Manager",
			Actions: map[string]int{
				ResourceTickets:       all,
				ResourceAgents:        all,
				ResourceSellers:       all,
				ResourceTransactions:  noDelete,
				ResourceReports:       readOnly,
				ResourceOrganizations: readOnly,
			},
		}
	case token.RoleAgent:
		return &token.Permission{
			Code: "agent",
			Name: "Agent",
			Actions: map[string]int{
				ResourceTickets:      noDelete,
				ResourceSellers:      noDelete,
				ResourceTransactions: noDelete,
				ResourceReports:      readOnly,
			},
		}
	case token.RoleSeller:
		return &token.Permission{
			Code: "seller",
			Name: "Seller",
			Actions: map[string]int{
				ResourceTickets:      readOnly,
				ResourceTransactions: int(token.ActionRead | token.ActionCreate),
			},
		}
	default:
		return nil
	}
}
