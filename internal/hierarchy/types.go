package hierarchy

import "fmt"

// Kind discriminates the four node types of the inspection hierarchy.
type Kind string

const (
	KindPartner  Kind = "partner"
	KindCustomer Kind = "customer"
	KindUnit     Kind = "unit"
	KindReport   Kind = "report"
)

// Report status values as issued by the upstream API.
const (
	StatusActive    = "Active"
	StatusRejected  = "Rejected"
	StatusCompleted = "Completed"
)

// File describes a single attachment of a report.
type File struct {
	ID          string `json:"_id"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Report is an inspection report. It belongs to a partner and
// optionally to a customer and/or a unit.
type Report struct {
	ID           string `json:"_id"`
	ReportNumber string `json:"reportNumber"`
	VNNumber     string `json:"vnNumber"`
	Status       string `json:"status"`
	AdminNote    string `json:"adminNote,omitempty"`
	PartnerNote  string `json:"partnerNote,omitempty"`
	IsNew        bool   `json:"isNew"`
	Files        []File `json:"files,omitempty"`
	PartnerID    string `json:"partnerId,omitempty"`
	CustomerID   string `json:"customerId,omitempty"`
	UnitID       string `json:"unitId,omitempty"`
}

// Unit is a sub-entity (typically a vehicle) owned by exactly one
// customer or exactly one partner, never both. The wire format keeps
// two optional id fields; ParentRef is the validated in-memory view.
type Unit struct {
	ID         string   `json:"_id"`
	UnitName   string   `json:"unitName"`
	CustomerID string   `json:"customerId,omitempty"`
	PartnerID  string   `json:"partnerId,omitempty"`
	Reports    []Report `json:"reports,omitempty"`
}

// Customer belongs to exactly one partner and may hold units and
// directly attached reports.
type Customer struct {
	ID        string   `json:"_id"`
	Name      string   `json:"name"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	PartnerID string   `json:"partnerId,omitempty"`
	Units     []Unit   `json:"units,omitempty"`
	Reports   []Report `json:"reports,omitempty"`
}

// Partner is the top-level tenant of the hierarchy.
type Partner struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Address   string     `json:"address,omitempty"`
	Customers []Customer `json:"customers,omitempty"`
	Units     []Unit     `json:"units,omitempty"`
	Reports   []Report   `json:"reports,omitempty"`
}

// Forest is the nested hierarchy as returned by the upstream API: an
// ordered sequence of root partners.
type Forest []Partner

// ParentKind identifies which side of the unit-parent union is set.
type ParentKind string

const (
	ParentCustomer ParentKind = "customer"
	ParentPartner  ParentKind = "partner"
)

// ParentRef is a unit's single parent reference: a customer id or a
// partner id, never both and never neither.
type ParentRef struct {
	Kind ParentKind
	ID   string
}

// CustomerParent builds a reference to a customer parent.
func CustomerParent(id string) ParentRef {
	return ParentRef{Kind: ParentCustomer, ID: id}
}

// PartnerParent builds a reference to a partner parent.
func PartnerParent(id string) ParentRef {
	return ParentRef{Kind: ParentPartner, ID: id}
}

// UnitParent validates the two optional wire-format ids and collapses
// them into a ParentRef. Exactly one id must be non-empty.
func UnitParent(customerID, partnerID string) (ParentRef, error) {
	switch {
	case customerID != "" && partnerID != "":
		return ParentRef{}, fmt.Errorf("unit parent: both customerId and partnerId are set")
	case customerID != "":
		return CustomerParent(customerID), nil
	case partnerID != "":
		return PartnerParent(partnerID), nil
	default:
		return ParentRef{}, fmt.Errorf("unit parent: neither customerId nor partnerId is set")
	}
}
