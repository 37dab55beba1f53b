package authz

import (
	"fmt"
	"sort"
	"strings"
)

// ListRoles 持有策略的角色即视为已定义
func (s *Service) ListRoles() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	subjects, err := s.enforcer.GetAllSubjects()
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	seen := make(map[string]struct{}, len(subjects))
	roles := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		if !strings.HasPrefix(subject, rolePrefix) {
			continue
		}
		if _, ok := seen[subject]; ok {
			continue
		}
		seen[subject] = struct{}{}
		roles = append(roles, subject)
	}
	sort.Strings(roles)
	return roles, nil
}

// SetAdminRoles 用 roles 整体替换管理员角色，空列表表示收回全部角色
func (s *Service) SetAdminRoles(adminID uint, roles []string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if adminID == 0 {
		return ErrAdminIDRequired
	}
	known, err := s.ListRoles()
	if err != nil {
		return err
	}
	normalized := make([]string, 0, len(roles))
	for _, role := range roles {
		name, err := NormalizeRole(role)
		if err != nil {
			return err
		}
		if !containsString(known, name) {
			return fmt.Errorf("%w: %s", ErrUnknownRole, name)
		}
		normalized = append(normalized, name)
	}

	subject := SubjectForAdmin(adminID)
	if _, err := s.enforcer.DeleteRolesForUser(subject); err != nil {
		return fmt.Errorf("clear admin roles failed: %w", err)
	}
	if len(normalized) == 0 {
		return nil
	}
	if _, err := s.enforcer.AddRolesForUser(subject, normalized); err != nil {
		return fmt.Errorf("assign admin role failed: %w", err)
	}
	return nil
}

// GetAdminRoles 管理员直接分配的角色，不含继承链
func (s *Service) GetAdminRoles(adminID uint) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if adminID == 0 {
		return nil, ErrAdminIDRequired
	}
	roles, err := s.enforcer.GetRolesForUser(SubjectForAdmin(adminID))
	if err != nil {
		return nil, fmt.Errorf("get admin roles failed: %w", err)
	}
	sort.Strings(roles)
	return roles, nil
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
