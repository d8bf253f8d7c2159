package upstream

import (
	"context"
	"fmt"
	"net/http"

	"inspection-portal/internal/hierarchy"
)

// NestedPartners fetches the full nested hierarchy (admin view).
func (c *Client) NestedPartners(ctx context.Context, token string) (hierarchy.Forest, error) {
	var forest hierarchy.Forest
	if err := c.doJSON(ctx, token, http.MethodGet, "/api/partners/nested", nil, &forest); err != nil {
		return nil, err
	}
	return forest, nil
}

// NestedPartnersMe fetches the nested hierarchy scoped to the
// authenticated partner.
func (c *Client) NestedPartnersMe(ctx context.Context, token string) (hierarchy.Forest, error) {
	var forest hierarchy.Forest
	if err := c.doJSON(ctx, token, http.MethodGet, "/api/partners/nested/me", nil, &forest); err != nil {
		return nil, err
	}
	return forest, nil
}

// PartnerInput carries the writable partner fields.
type PartnerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

func (c *Client) GetPartner(ctx context.Context, token, id string) (*hierarchy.Partner, error) {
	var p hierarchy.Partner
	if err := c.doJSON(ctx, token, http.MethodGet, "/api/partners/"+id, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreatePartner(ctx context.Context, token string, in PartnerInput) (*hierarchy.Partner, error) {
	var p hierarchy.Partner
	if err := c.doJSON(ctx, token, http.MethodPost, "/api/partners", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdatePartner(ctx context.Context, token, id string, in PartnerInput) (*hierarchy.Partner, error) {
	var p hierarchy.Partner
	if err := c.doJSON(ctx, token, http.MethodPut, "/api/partners/"+id, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeletePartner(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, token, http.MethodDelete, "/api/partners/"+id, nil, nil)
}

// SetPartnerPassword resets a partner's login password (admin only).
func (c *Client) SetPartnerPassword(ctx context.Context, token, id, password string) error {
	payload := map[string]string{"password": password}
	return c.doJSON(ctx, token, http.MethodPut, "/api/partners/"+id+"/password", payload, nil)
}

// CustomerInput carries the writable customer fields.
type CustomerInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	PartnerID string `json:"partnerId"`
}

func (c *Client) GetCustomer(ctx context.Context, token, id string) (*hierarchy.Customer, error) {
	var cust hierarchy.Customer
	if err := c.doJSON(ctx, token, http.MethodGet, "/api/customers/"+id, nil, &cust); err != nil {
		return nil, err
	}
	return &cust, nil
}

func (c *Client) CreateCustomer(ctx context.Context, token string, in CustomerInput) (*hierarchy.Customer, error) {
	var cust hierarchy.Customer
	if err := c.doJSON(ctx, token, http.MethodPost, "/api/customers", in, &cust); err != nil {
		return nil, err
	}
	return &cust, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, token, id string, in CustomerInput) (*hierarchy.Customer, error) {
	var cust hierarchy.Customer
	if err := c.doJSON(ctx, token, http.MethodPut, "/api/customers/"+id, in, &cust); err != nil {
		return nil, err
	}
	return &cust, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, token, http.MethodDelete, "/api/customers/"+id, nil, nil)
}

// CustomersByPartner lists the customers owned by a partner.
func (c *Client) CustomersByPartner(ctx context.Context, token, partnerID string) ([]hierarchy.Customer, error) {
	var customers []hierarchy.Customer
	if err := c.doJSON(ctx, token, http.MethodGet, "/api/customers/partner/"+partnerID, nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// unitCreateBody is the wire form of a unit creation; exactly one of
// the two parent ids is populated from the ParentRef union.
type unitCreateBody struct {
	UnitName   string `json:"unitName"`
	CustomerID string `json:"customerId,omitempty"`
	PartnerID  string `json:"partnerId,omitempty"`
}

// CreateUnit creates a unit under the given parent. The ParentRef
// union makes the customerId-XOR-partnerId invariant unrepresentable
// here; callers validate raw form input with hierarchy.UnitParent
// before any network call.
func (c *Client) CreateUnit(ctx context.Context, token, unitName string, parent hierarchy.ParentRef) (*hierarchy.Unit, error) {
	body := unitCreateBody{UnitName: unitName}
	switch parent.Kind {
	case hierarchy.ParentCustomer:
		body.CustomerID = parent.ID
	case hierarchy.ParentPartner:
		body.PartnerID = parent.ID
	default:
		return nil, fmt.Errorf("create unit: invalid parent kind %q", parent.Kind)
	}

	// The API wraps the created unit for this endpoint.
	var resp struct {
		Unit hierarchy.Unit `json:"unit"`
	}
	if err := c.doJSON(ctx, token, http.MethodPost, "/api/units", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Unit, nil
}

func (c *Client) GetUnit(ctx context.Context, token, id string) (*hierarchy.Unit, error) {
	var u hierarchy.Unit
	if err := c.doJSON(ctx, token, http.MethodGet, "/api/units/"+id, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUnit(ctx context.Context, token, id, unitName string) (*hierarchy.Unit, error) {
	payload := map[string]string{"unitName": unitName}
	var u hierarchy.Unit
	if err := c.doJSON(ctx, token, http.MethodPut, "/api/units/"+id, payload, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteUnit(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, token, http.MethodDelete, "/api/units/"+id, nil, nil)
}

// UnitsByCustomer lists the units owned by a customer.
func (c *Client) UnitsByCustomer(ctx context.Context, token, customerID string) ([]hierarchy.Unit, error) {
	var units []hierarchy.Unit
	if err := c.doJSON(ctx, token, http.MethodGet, "/api/units/customer/"+customerID, nil, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// UnitsByPartner lists the units attached directly to a partner.
func (c *Client) UnitsByPartner(ctx context.Context, token, partnerID string) ([]hierarchy.Unit, error) {
	var units []hierarchy.Unit
	if err := c.doJSON(ctx, token, http.MethodGet, "/api/units/partner/"+partnerID, nil, &units); err != nil {
		return nil, err
	}
	return units, nil
}
