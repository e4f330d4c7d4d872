// Package service holds the catalog business logic.
package service

import (
	"context"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/catalog/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/pricing"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Service provides catalog operations and the batched reference lookups the
// quote pricing path depends on.
type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Repository() *repository.Repository {
	return s.repo
}

// ReferenceIDs names every catalog record a quote update touches.
type ReferenceIDs struct {
	ServicePlanIDs []uuid.UUID
	BundlePlanIDs  []uuid.UUID
	AddOnIDs       []uuid.UUID
	DiscountIDs    []uuid.UUID
}

// References is the prefetched catalog state for one pricing run, keyed by
// id and already converted to the pricing engine's models.
type References struct {
	ServicePlans map[uuid.UUID]pricing.ServicePlan
	BundlePlans  map[uuid.UUID]pricing.BundlePlan
	AddOns       map[uuid.UUID]pricing.AddOnService
	Discounts    map[uuid.UUID]pricing.CompanyDiscount
}

// FetchReferences batch-loads all referenced catalog records in parallel.
// One query per record type regardless of how many line items reference it.
func (s *Service) FetchReferences(ctx context.Context, companyID uuid.UUID, ids ReferenceIDs) (References, error) {
	refs := References{
		ServicePlans: make(map[uuid.UUID]pricing.ServicePlan),
		BundlePlans:  make(map[uuid.UUID]pricing.BundlePlan),
		AddOns:       make(map[uuid.UUID]pricing.AddOnService),
		Discounts:    make(map[uuid.UUID]pricing.CompanyDiscount),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		plans, err := s.repo.GetServicePlansByIDs(gctx, companyID, ids.ServicePlanIDs)
		if err != nil {
			return err
		}
		for id, p := range plans {
			refs.ServicePlans[id] = p.ToPricing()
		}
		return nil
	})
	g.Go(func() error {
		bundles, err := s.repo.GetBundlePlansByIDs(gctx, companyID, ids.BundlePlanIDs)
		if err != nil {
			return err
		}
		for id, b := range bundles {
			refs.BundlePlans[id] = b.ToPricing()
		}
		return nil
	})
	g.Go(func() error {
		addons, err := s.repo.GetAddOnsByIDs(gctx, companyID, ids.AddOnIDs)
		if err != nil {
			return err
		}
		for id, a := range addons {
			refs.AddOns[id] = a.ToPricing()
		}
		return nil
	})
	g.Go(func() error {
		discounts, err := s.repo.GetDiscountsByIDs(gctx, companyID, ids.DiscountIDs)
		if err != nil {
			return err
		}
		for id, d := range discounts {
			refs.Discounts[id] = d.ToPricing()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return References{}, err
	}
	return refs, nil
}

// ComponentIDsForBundles collects the service-plan and add-on ids referenced
// by the given bundles, so a second fetch round can load bundle components.
func ComponentIDsForBundles(bundles map[uuid.UUID]pricing.BundlePlan) (planIDs, addOnIDs []uuid.UUID) {
	seenPlans := make(map[uuid.UUID]struct{})
	seenAddOns := make(map[uuid.UUID]struct{})
	for _, b := range bundles {
		for _, id := range b.ServicePlanIDs {
			if _, ok := seenPlans[id]; !ok {
				seenPlans[id] = struct{}{}
				planIDs = append(planIDs, id)
			}
		}
		for _, id := range b.AddOnIDs {
			if _, ok := seenAddOns[id]; !ok {
				seenAddOns[id] = struct{}{}
				addOnIDs = append(addOnIDs, id)
			}
		}
	}
	return planIDs, addOnIDs
}
