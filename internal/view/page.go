package view

import (
	"buyback-pos/internal/models"
)

// Operator is the signed-in staff member shown in the sidebar.
type Operator struct {
	ID   uint
	Name string
	Role string
}

// Page wraps every screen's data with what the layout needs.
type Page struct {
	Title     string
	Active    string
	Path      string
	User      *Operator
	Site      models.SiteInfo
	Flash     string
	Error     string
	RequestID string
	Data      any
}

type NavItem struct {
	Key   string
	Label string
	Href  string
}

var navItems = []struct {
	NavItem
	roles []string
}{
	{NavItem{"purchase", "Buy", "/purchase"}, []string{models.RoleBiller, models.RoleManager, models.RoleAdmin}},
	{NavItem{"products", "Products", "/products"}, []string{models.RoleInventory, models.RoleManager, models.RoleAdmin}},
	{NavItem{"inventory", "Inventory", "/inventory"}, []string{models.RoleInventory, models.RoleManager, models.RoleAdmin}},
	{NavItem{"purchase-order", "Purchases", "/purchase-order"}, []string{models.RoleBiller, models.RoleManager, models.RoleAdmin}},
	{NavItem{"customers", "Customers", "/customers"}, []string{models.RoleBiller, models.RoleManager, models.RoleAdmin}},
	{NavItem{"receipts", "Receipts", "/receipts"}, []string{models.RoleBiller, models.RoleManager, models.RoleAdmin}},
	{NavItem{"audit", "Audit", "/admin/audit"}, []string{models.RoleAdmin}},
}

// Nav lists the sidebar links an operator with role may open.
func Nav(role string) []NavItem {
	var out []NavItem
	for _, item := range navItems {
		for _, r := range item.roles {
			if r == role {
				out = append(out, item.NavItem)
				break
			}
		}
	}
	return out
}
