package user

type Role string

const (
	RoleTranslator   Role = "TRANSLATOR"
	RoleEmployee     Role = "EMPLOYEE"
	RoleCompanyAdmin Role = "COMPANY_ADMIN"
	RoleAdmin        Role = "ADMIN"
)

// User mirrors the platform's user record. Availability fields only
// carry meaning for translators.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        Role     `json:"role"`
	Languages   []string `json:"languages,omitempty"`
	IsAvailable bool     `json:"is_available,omitempty"`
	HourlyRate  string   `json:"hourly_rate,omitempty"`
	CompanyID   string   `json:"company_id,omitempty"`
}

// CanBook reports whether the role may create bookings.
func (r Role) CanBook() bool {
	return r == RoleEmployee || r == RoleCompanyAdmin
}

// TranslatorUpdate is the mutable slice of a translator profile.
type TranslatorUpdate struct {
	Name        string   `json:"name,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	HourlyRate  string   `json:"hourly_rate,omitempty"`
	IsAvailable *bool    `json:"is_available,omitempty"`
}
