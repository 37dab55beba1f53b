package authz

import "fmt"

// 预置角色
const (
	RoleAuditor   = "auditor"
	RoleInventory = "inventory"
	RoleMerchant  = "merchant"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 预置角色矩阵：auditor 只读，inventory 管理商品与卡密，merchant 额外处理订单、优惠码与余额
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: RoleAuditor,
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     RoleInventory,
			Inherits: []string{RoleAuditor},
			Policies: []Policy{
				{Object: "/admin/products", Action: "*"},
				{Object: "/admin/products/:id", Action: "*"},
				{Object: "/admin/cards", Action: "*"},
				{Object: "/admin/cards/:id", Action: "*"},
				{Object: "/admin/cards/batch-delete", Action: "POST"},
			},
		},
		{
			Role:     RoleMerchant,
			Inherits: []string{RoleInventory},
			Policies: []Policy{
				{Object: "/admin/orders/confirm", Action: "POST"},
				{Object: "/orders/confirm", Action: "POST"},
				{Object: "/admin/orders/:id/cancel", Action: "POST"},
				{Object: "/admin/orders/:id/fulfill", Action: "POST"},
				{Object: "/admin/coupons", Action: "*"},
				{Object: "/admin/coupons/:id", Action: "*"},
				{Object: "/admin/balance/recharge", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 写入预置角色、继承关系与策略，已存在的规则跳过
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}
		for _, policy := range seed.Policies {
			if err := s.grant(role, policy); err != nil {
				return fmt.Errorf("add builtin policy for %s failed: %w", role, err)
			}
		}
		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddRoleForUser(role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
	}
	return nil
}
