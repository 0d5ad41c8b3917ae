package simulator

import "linguacall/internal/domain/user"

// SeedDemo loads the demo accounts used for local development. Every
// account uses the password "password123".
func SeedDemo(state *State) error {
	accounts := []user.User{
		{
			Email:       "maria.garcia@translator.com",
			Name:        "Maria Garcia",
			Role:        user.RoleTranslator,
			Languages:   []string{"SPANISH", "FRENCH"},
			HourlyRate:  "45.00",
			IsAvailable: true,
		},
		{
			Email:       "jean.dupont@translator.com",
			Name:        "Jean Dupont",
			Role:        user.RoleTranslator,
			Languages:   []string{"FRENCH"},
			HourlyRate:  "50.00",
			IsAvailable: true,
		},
		{
			Email:       "hans.mueller@translator.com",
			Name:        "Hans Mueller",
			Role:        user.RoleTranslator,
			Languages:   []string{"GERMAN"},
			HourlyRate:  "48.00",
			IsAvailable: false,
		},
		{
			Email:     "admin@techcorp.com",
			Name:      "TechCorp Admin",
			Role:      user.RoleCompanyAdmin,
			CompanyID: "techcorp",
		},
		{
			Email:     "employee@techcorp.com",
			Name:      "TechCorp Employee",
			Role:      user.RoleEmployee,
			CompanyID: "techcorp",
		},
	}
	for _, u := range accounts {
		if err := state.SeedAccount(u, "password123"); err != nil {
			return err
		}
	}
	return nil
}
