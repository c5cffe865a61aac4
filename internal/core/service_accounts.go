package core

import (
	"context"

	"obracore/pkg/domain"
)

// CreatePlan persists a subscription plan.
func (s *Service) CreatePlan(ctx context.Context, plan Plan) (Plan, Result, error) {
	var created Plan
	res, err := s.transact(ctx, "create_plan", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreatePlan(plan)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdatePlan mutates a plan using the provided mutator.
func (s *Service) UpdatePlan(ctx context.Context, id string, mutator func(*Plan) error) (Plan, Result, error) {
	var updated Plan
	res, err := s.transact(ctx, "update_plan", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdatePlan(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeletePlan removes a plan record.
func (s *Service) DeletePlan(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_plan", func(tx domain.Transaction) error {
		return tx.DeletePlan(id)
	}, func() string { return id })
}

// ListPlans returns all plans, newest first.
func (s *Service) ListPlans(ctx context.Context) ([]Plan, error) {
	var out []Plan
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListPlans()
		return nil
	})
	return sortByCreation(out, func(p Plan) Base { return p.Base }), err
}

// GetPlan returns a plan by id.
func (s *Service) GetPlan(ctx context.Context, id string) (Plan, error) {
	var out Plan
	err := s.read(ctx, func(v domain.TransactionView) error {
		plan, ok := v.FindPlan(id)
		if !ok {
			return ErrNotFound{Entity: EntityPlan, ID: id}
		}
		out = plan
		return nil
	})
	return out, err
}

// CreateUser persists a user account.
func (s *Service) CreateUser(ctx context.Context, user User) (User, Result, error) {
	var created User
	res, err := s.transact(ctx, "create_user", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateUser(user)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateUser mutates a user using the provided mutator.
func (s *Service) UpdateUser(ctx context.Context, id string, mutator func(*User) error) (User, Result, error) {
	var updated User
	res, err := s.transact(ctx, "update_user", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateUser(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteUser removes a user record.
func (s *Service) DeleteUser(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_user", func(tx domain.Transaction) error {
		return tx.DeleteUser(id)
	}, func() string { return id })
}

// ListUsers returns all users, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListUsers()
		return nil
	})
	return sortByCreation(out, func(u User) Base { return u.Base }), err
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	var out User
	err := s.read(ctx, func(v domain.TransactionView) error {
		user, ok := v.FindUser(id)
		if !ok {
			return ErrNotFound{Entity: EntityUser, ID: id}
		}
		out = user
		return nil
	})
	return out, err
}

// CreateOrganization persists a tenant organization.
func (s *Service) CreateOrganization(ctx context.Context, org Organization) (Organization, Result, error) {
	var created Organization
	res, err := s.transact(ctx, "create_organization", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateOrganization(org)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateOrganization mutates an organization using the provided mutator.
func (s *Service) UpdateOrganization(ctx context.Context, id string, mutator func(*Organization) error) (Organization, Result, error) {
	var updated Organization
	res, err := s.transact(ctx, "update_organization", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateOrganization(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteOrganization removes an organization record.
func (s *Service) DeleteOrganization(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_organization", func(tx domain.Transaction) error {
		return tx.DeleteOrganization(id)
	}, func() string { return id })
}

// ListOrganizations returns all organizations, newest first.
func (s *Service) ListOrganizations(ctx context.Context) ([]Organization, error) {
	var out []Organization
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListOrganizations()
		return nil
	})
	return sortByCreation(out, func(o Organization) Base { return o.Base }), err
}

// GetOrganization returns an organization by id.
func (s *Service) GetOrganization(ctx context.Context, id string) (Organization, error) {
	var out Organization
	err := s.read(ctx, func(v domain.TransactionView) error {
		org, ok := v.FindOrganization(id)
		if !ok {
			return ErrNotFound{Entity: EntityOrganization, ID: id}
		}
		out = org
		return nil
	})
	return out, err
}

// AttachWallet links a wallet to an organization within one transaction.
func (s *Service) AttachWallet(ctx context.Context, organizationID, walletID string) (Organization, Result, error) {
	var updated Organization
	res, err := s.transact(ctx, "attach_wallet", func(tx domain.Transaction) error {
		if _, ok := tx.Snapshot().FindWallet(walletID); !ok {
			return ErrNotFound{Entity: EntityWallet, ID: walletID}
		}
		var err error
		updated, err = tx.UpdateOrganization(organizationID, func(o *Organization) error {
			for _, id := range o.WalletIDs {
				if id == walletID {
					return nil
				}
			}
			o.WalletIDs = append(o.WalletIDs, walletID)
			return nil
		})
		return err
	}, func() string { return organizationID })
	return updated, res, err
}

// CreateWallet persists a wallet.
func (s *Service) CreateWallet(ctx context.Context, wallet Wallet) (Wallet, Result, error) {
	var created Wallet
	res, err := s.transact(ctx, "create_wallet", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateWallet(wallet)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateWallet mutates a wallet using the provided mutator.
func (s *Service) UpdateWallet(ctx context.Context, id string, mutator func(*Wallet) error) (Wallet, Result, error) {
	var updated Wallet
	res, err := s.transact(ctx, "update_wallet", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateWallet(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteWallet removes a wallet record.
func (s *Service) DeleteWallet(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_wallet", func(tx domain.Transaction) error {
		return tx.DeleteWallet(id)
	}, func() string { return id })
}

// ListWallets returns all wallets, newest first.
func (s *Service) ListWallets(ctx context.Context) ([]Wallet, error) {
	var out []Wallet
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListWallets()
		return nil
	})
	return sortByCreation(out, func(w Wallet) Base { return w.Base }), err
}

// GetWallet returns a wallet by id.
func (s *Service) GetWallet(ctx context.Context, id string) (Wallet, error) {
	var out Wallet
	err := s.read(ctx, func(v domain.TransactionView) error {
		wallet, ok := v.FindWallet(id)
		if !ok {
			return ErrNotFound{Entity: EntityWallet, ID: id}
		}
		out = wallet
		return nil
	})
	return out, err
}
