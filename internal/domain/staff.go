package domain

// StaffStat tracks points for one staff member, stored globally across
// tenants. Points only increase; absence means zero.
type StaffStat struct {
	Points int    `json:"points"`
	Name   string `json:"name"`
}
