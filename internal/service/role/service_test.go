package role

import (
	"context"
	"testing"

	"glalex-shop/internal/domain"
)

type stubProfiles struct {
	admin      *domain.AdminProfile
	adminErr   error
	courier    *domain.CourierProfile
	courierErr error
}

func (s *stubProfiles) GetAdminByUserID(_ context.Context, _ string) (*domain.AdminProfile, error) {
	if s.adminErr != nil {
		return nil, s.adminErr
	}
	if s.admin == nil {
		return nil, domain.ErrNotFound
	}
	return s.admin, nil
}

func (s *stubProfiles) GetCourierByUserID(_ context.Context, _ string) (*domain.CourierProfile, error) {
	if s.courierErr != nil {
		return nil, s.courierErr
	}
	if s.courier == nil {
		return nil, domain.ErrNotFound
	}
	return s.courier, nil
}

func TestResolveCustomerHasNoProfiles(t *testing.T) {
	svc := New(&stubProfiles{})
	r, err := svc.Resolve(context.Background(), domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !r.IsCustomer() || r.IsAdmin() || r.IsCourier() {
		t.Fatalf("expected plain customer role")
	}
}

func TestResolveActiveAdminProfile(t *testing.T) {
	svc := New(&stubProfiles{admin: &domain.AdminProfile{ID: "a1", UserID: "u1", Active: true}})
	r, err := svc.Resolve(context.Background(), domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !r.IsAdmin() {
		t.Fatalf("expected admin role")
	}
	if r.IsCustomer() {
		t.Fatalf("admin must not act as customer")
	}
}

func TestResolveInactiveAdminProfileIsNotAdmin(t *testing.T) {
	svc := New(&stubProfiles{admin: &domain.AdminProfile{ID: "a1", UserID: "u1", Active: false}})
	r, err := svc.Resolve(context.Background(), domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.IsAdmin() {
		t.Fatalf("inactive admin profile must not grant admin")
	}
}

func TestResolveSuperuserWithoutProfile(t *testing.T) {
	svc := New(&stubProfiles{})
	r, err := svc.Resolve(context.Background(), domain.User{ID: "u1", IsSuperuser: true})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !r.IsAdmin() {
		t.Fatalf("superuser must resolve as admin")
	}
}

func TestResolveCourier(t *testing.T) {
	svc := New(&stubProfiles{courier: &domain.CourierProfile{ID: "c1", UserID: "u1", Active: true}})
	r, err := svc.Resolve(context.Background(), domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !r.IsCourier() || !r.IsActiveCourier() {
		t.Fatalf("expected active courier role")
	}
	if r.IsCustomer() {
		t.Fatalf("courier must not act as customer")
	}
}

func TestResolveDualAdminCourier(t *testing.T) {
	svc := New(&stubProfiles{
		admin:   &domain.AdminProfile{ID: "a1", UserID: "u1", Active: true},
		courier: &domain.CourierProfile{ID: "c1", UserID: "u1", Active: true},
	})
	r, err := svc.Resolve(context.Background(), domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !r.IsAdmin() || !r.IsCourier() {
		t.Fatalf("expected both capabilities held at once")
	}
}
