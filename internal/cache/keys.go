package cache

import (
	"fmt"
	"strings"
)

// CustomerProfileKey is the cached customer view
func CustomerProfileKey(customerID string) string {
	return fmt.Sprintf("customer:%s:profile", customerID)
}

// DashboardKey is the cached organization dashboard for one query
func DashboardKey(organizationID string, from, to int64, groupBy string) string {
	return fmt.Sprintf("org:%s:dashboard:%d:%d:%s", organizationID, from, to, groupBy)
}

// CustomerPartition matches every view cached for a customer
func CustomerPartition(customerID string) string {
	return fmt.Sprintf("customer:%s:*", customerID)
}

// OrganizationPartition matches every view cached for an organization
func OrganizationPartition(organizationID string) string {
	return fmt.Sprintf("org:%s:*", organizationID)
}

// CustomerGeneration counts the invalidations of a customer partition
func CustomerGeneration(customerID string) string {
	return "gen:customer:" + customerID
}

// OrganizationGeneration counts the invalidations of an organization partition
func OrganizationGeneration(organizationID string) string {
	return "gen:org:" + organizationID
}

// generationOf returns the generation key of the partition holding a view key, or "" when
// the key belongs to no partition
func generationOf(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 3 || parts[1] == "" {
		return ""
	}
	return "gen:" + parts[0] + ":" + parts[1]
}
