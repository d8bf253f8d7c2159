package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allExpanded(Kind, string) bool  { return true }
func noneExpanded(Kind, string) bool { return false }

func testForest() Forest {
	return Forest{
		{
			ID:   "p1",
			Name: "Acme",
			Reports: []Report{
				{ID: "rp1", ReportNumber: "WO900"},
			},
			Units: []Unit{
				{ID: "up1", UnitName: "Fleet Van", PartnerID: "p1", Reports: []Report{
					{ID: "rup1", ReportNumber: "WO901"},
				}},
			},
			Customers: []Customer{
				{
					ID:   "c1",
					Name: "Bob",
					Units: []Unit{
						{ID: "u1", UnitName: "Sedan", CustomerID: "c1", Reports: []Report{
							{ID: "r1", ReportNumber: "WO1", IsNew: true},
						}},
					},
					Reports: []Report{
						{ID: "rc1", ReportNumber: "WO2"},
					},
				},
			},
		},
	}
}

func TestExpandKey(t *testing.T) {
	assert.Equal(t, "treeview_expanded_partner_p1", ExpandKey(KindPartner, "p1"))
	assert.Equal(t, "treeview_expanded_report_r9", ExpandKey(KindReport, "r9"))
}

func TestFlatten_Ordering(t *testing.T) {
	rows := Flatten(testForest(), allExpanded)

	var got []string
	for _, n := range rows {
		got = append(got, string(n.Kind)+":"+n.ID)
	}

	// Partner children: direct reports, direct units, then customers;
	// customer children: units then reports; unit children: reports.
	assert.Equal(t, []string{
		"partner:p1",
		"report:rp1",
		"unit:up1",
		"report:rup1",
		"customer:c1",
		"unit:u1",
		"report:r1",
		"report:rc1",
	}, got)
}

func TestFlatten_Deterministic(t *testing.T) {
	f := testForest()
	first := Flatten(f, allExpanded)
	second := Flatten(f, allExpanded)
	assert.Equal(t, first, second)
}

func TestFlatten_CollapsedShowsRootsOnly(t *testing.T) {
	rows := Flatten(testForest(), noneExpanded)
	require.Len(t, rows, 1)
	assert.Equal(t, KindPartner, rows[0].Kind)
	assert.True(t, rows[0].Expandable)
	assert.False(t, rows[0].Expanded)
	assert.Equal(t, 3, rows[0].ChildCount)
}

func TestFlatten_ExpandablePredicate(t *testing.T) {
	f := Forest{
		{ID: "p1", Name: "Empty"},
		{ID: "p2", Name: "HasReport", Reports: []Report{{ID: "r1"}}},
	}
	rows := Flatten(f, noneExpanded)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].Expandable)
	assert.True(t, rows[1].Expandable)
}

// The admin-dashboard scenario: Acme expandable, Bob expandable under
// it, and WO1 rendered with the new-report highlight once both are
// expanded.
func TestFlatten_NewReportHighlight(t *testing.T) {
	f := Forest{
		{
			ID:   "p1",
			Name: "Acme",
			Customers: []Customer{
				{ID: "c1", Name: "Bob", Reports: []Report{
					{ID: "r1", ReportNumber: "WO1", IsNew: true},
				}},
			},
		},
	}

	rows := Flatten(f, noneExpanded)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Expandable)

	open := map[string]bool{"p1": true, "c1": true}
	rows = Flatten(f, func(_ Kind, id string) bool { return open[id] })
	require.Len(t, rows, 3)
	assert.Equal(t, "Bob", rows[1].Label)
	assert.True(t, rows[1].Expandable)
	assert.Equal(t, "WO1", rows[2].Label)
	assert.True(t, rows[2].IsNew)
}

func TestNewReports(t *testing.T) {
	reports := NewReports(testForest())
	require.Len(t, reports, 1)
	assert.Equal(t, "r1", reports[0].ID)
	assert.Equal(t, "Bob", reports[0].CustomerName)
	assert.Equal(t, "Sedan", reports[0].UnitName)
}

func TestUnitParent(t *testing.T) {
	testCases := []struct {
		name       string
		customerID string
		partnerID  string
		want       ParentRef
		wantErr    bool
	}{
		{name: "customer parent", customerID: "c1", want: CustomerParent("c1")},
		{name: "partner parent", partnerID: "p1", want: PartnerParent("p1")},
		{name: "both set", customerID: "c1", partnerID: "p1", wantErr: true},
		{name: "neither set", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := UnitParent(tc.customerID, tc.partnerID)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, ref)
		})
	}
}
