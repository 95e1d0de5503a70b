package models

type SiteInfo struct {
	Name          string   `json:"name"`
	Tagline       string   `json:"tagline"`
	Logo          string   `json:"logo"`
	Address       string   `json:"address"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	OpeningHours  string   `json:"opening_hours" mapstructure:"opening_hours"`
	WorkingDays   []string `json:"working_days" mapstructure:"working_days"`
	ReceiptFooter string   `json:"receipt_footer" mapstructure:"receipt_footer"`
}
