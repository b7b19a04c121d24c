package workflow

import (
	"context"
	"errors"

	"github.com/clinic/booking/internal/domain/identity"
	"github.com/clinic/booking/internal/domain/profile"
)

// SeedAccount is one demo account created by Seed.
type SeedAccount struct {
	Name      string
	Email     string
	Password  string
	Role      identity.Role
	Telephone string
	Doctor    *profile.DoctorProfileInput
}

// DemoAccounts is the default seed set: an admin, a doctor and a patient.
var DemoAccounts = []SeedAccount{
	{Name: "Admin", Email: "admin@clinic.local", Password: "adminpass", Role: identity.RoleAdmin},
	{
		Name: "Dr. John", Email: "dr1@clinic.local", Password: "password", Role: identity.RoleDoctor,
		Telephone: "078000001",
		Doctor: &profile.DoctorProfileInput{
			Telephone: "078000001", Specialization: "General", Availability: "Mon 09-12; Tue 14-17",
		},
	},
	{Name: "Alice", Email: "patient1@clinic.local", Password: "password", Role: identity.RolePatient, Telephone: "078000002"},
}

// Seed creates the given accounts, skipping emails that already exist. It
// returns the emails it created.
func (s *Service) Seed(ctx context.Context, accounts []SeedAccount) ([]string, error) {
	var created []string
	for _, acct := range accounts {
		if _, err := s.users.GetByEmail(ctx, acct.Email); err == nil {
			s.log.Info().Str("email", acct.Email).Msg("seed account exists, skipping")
			continue
		} else if !errors.Is(err, identity.ErrUserNotFound) {
			return created, err
		}

		err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
			if acct.Role == identity.RoleAdmin {
				_, err := s.users.CreateAdmin(ctx, acct.Name, acct.Email, acct.Password)
				return err
			}
			u, err := s.users.Register(ctx, identity.RegisterInput{
				Name: acct.Name, Email: acct.Email, Password: acct.Password, Role: string(acct.Role),
			})
			if err != nil {
				return err
			}
			id, err := s.profiles.CreateFor(ctx, u, acct.Telephone)
			if err != nil {
				return err
			}
			if acct.Doctor != nil && acct.Role == identity.RoleDoctor {
				_, err = s.profiles.UpdateDoctorProfile(ctx, id, *acct.Doctor)
			}
			return err
		})
		if err != nil {
			return created, err
		}
		s.log.Info().Str("email", acct.Email).Str("role", string(acct.Role)).Msg("seed account created")
		created = append(created, acct.Email)
	}
	return created, nil
}
