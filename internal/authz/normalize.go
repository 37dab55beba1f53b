package authz

import (
	"fmt"
	"sort"
	"strings"
)

const (
	apiPrefix       = "/api"
	adminSubjectFmt = "admin:%d"
	rolePrefix      = "role:"
)

// SubjectForAdmin admin:<id>
func SubjectForAdmin(adminID uint) string {
	return fmt.Sprintf(adminSubjectFmt, adminID)
}

// NormalizeRole merchant -> role:merchant，内部空格替换为下划线
func NormalizeRole(role string) (string, error) {
	name := strings.ReplaceAll(strings.TrimSpace(role), " ", "_")
	name = strings.TrimPrefix(name, rolePrefix)
	if name == "" {
		return "", ErrRoleRequired
	}
	return rolePrefix + name, nil
}

// NormalizeObject 路由去掉 /api 前缀后参与匹配
func NormalizeObject(object string) string {
	path := strings.TrimSpace(object)
	if path == "" || path == apiPrefix {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if strings.HasPrefix(path, apiPrefix+"/") {
		path = strings.TrimPrefix(path, apiPrefix)
	}
	return path
}

func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}

func toPolicies(rules [][]string) []Policy {
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Subject: strings.TrimSpace(rule[0]),
			Object:  NormalizeObject(rule[1]),
			Action:  NormalizeAction(rule[2]),
		})
	}
	return policies
}

func sortPolicies(policies []Policy) []Policy {
	sort.Slice(policies, func(i, j int) bool {
		if policies[i].Object != policies[j].Object {
			return policies[i].Object < policies[j].Object
		}
		if policies[i].Action != policies[j].Action {
			return policies[i].Action < policies[j].Action
		}
		return policies[i].Subject < policies[j].Subject
	})
	return policies
}
