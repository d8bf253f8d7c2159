package hierarchy

import "fmt"

// Node is one flattened row of the rendered tree. Rendering flattens
// the forest into rows instead of recursing in the template so the
// ordering stays testable.
type Node struct {
	Kind       Kind
	ID         string
	Label      string
	Level      int
	Expandable bool
	Expanded   bool
	IsNew      bool
	ChildCount int
}

// ExpandKey derives the persistence key for a node's expansion flag.
func ExpandKey(kind Kind, id string) string {
	return fmt.Sprintf("treeview_expanded_%s_%s", kind, id)
}

// ExpandedFunc reports whether the node identified by kind and id is
// currently expanded.
type ExpandedFunc func(kind Kind, id string) bool

// Flatten renders the forest into ordered rows, descending only into
// expanded nodes. Child ordering is fixed for visual stability:
// partner -> direct reports, direct units, customers; customer ->
// units then reports; unit -> reports.
func Flatten(f Forest, expanded ExpandedFunc) []Node {
	var rows []Node
	for i := range f {
		rows = appendPartner(rows, &f[i], 0, expanded)
	}
	return rows
}

func appendPartner(rows []Node, p *Partner, level int, expanded ExpandedFunc) []Node {
	childCount := len(p.Reports) + len(p.Units) + len(p.Customers)
	open := childCount > 0 && expanded(KindPartner, p.ID)
	rows = append(rows, Node{
		Kind:       KindPartner,
		ID:         p.ID,
		Label:      p.Name,
		Level:      level,
		Expandable: childCount > 0,
		Expanded:   open,
		ChildCount: childCount,
	})
	if !open {
		return rows
	}
	for j := range p.Reports {
		rows = appendReport(rows, &p.Reports[j], level+1)
	}
	for j := range p.Units {
		rows = appendUnit(rows, &p.Units[j], level+1, expanded)
	}
	for j := range p.Customers {
		rows = appendCustomer(rows, &p.Customers[j], level+1, expanded)
	}
	return rows
}

func appendCustomer(rows []Node, c *Customer, level int, expanded ExpandedFunc) []Node {
	childCount := len(c.Units) + len(c.Reports)
	open := childCount > 0 && expanded(KindCustomer, c.ID)
	rows = append(rows, Node{
		Kind:       KindCustomer,
		ID:         c.ID,
		Label:      c.Name,
		Level:      level,
		Expandable: childCount > 0,
		Expanded:   open,
		ChildCount: childCount,
	})
	if !open {
		return rows
	}
	for j := range c.Units {
		rows = appendUnit(rows, &c.Units[j], level+1, expanded)
	}
	for j := range c.Reports {
		rows = appendReport(rows, &c.Reports[j], level+1)
	}
	return rows
}

func appendUnit(rows []Node, u *Unit, level int, expanded ExpandedFunc) []Node {
	open := len(u.Reports) > 0 && expanded(KindUnit, u.ID)
	rows = append(rows, Node{
		Kind:       KindUnit,
		ID:         u.ID,
		Label:      u.UnitName,
		Level:      level,
		Expandable: len(u.Reports) > 0,
		Expanded:   open,
		ChildCount: len(u.Reports),
	})
	if !open {
		return rows
	}
	for j := range u.Reports {
		rows = appendReport(rows, &u.Reports[j], level+1)
	}
	return rows
}

func appendReport(rows []Node, r *Report, level int) []Node {
	return append(rows, Node{
		Kind:  KindReport,
		ID:    r.ID,
		Label: r.ReportNumber,
		Level: level,
		IsNew: r.IsNew,
	})
}

// NewReport is an unread report together with the names of its
// enclosing customer and unit, used for the partner dashboard chips.
type NewReport struct {
	Report
	CustomerName string
	UnitName     string
}

// NewReports collects every report flagged isNew, walking all three
// nesting levels a report can live at.
func NewReports(f Forest) []NewReport {
	var out []NewReport
	for i := range f {
		p := &f[i]
		for j := range p.Reports {
			if p.Reports[j].IsNew {
				out = append(out, NewReport{Report: p.Reports[j]})
			}
		}
		for j := range p.Units {
			u := &p.Units[j]
			for k := range u.Reports {
				if u.Reports[k].IsNew {
					out = append(out, NewReport{Report: u.Reports[k], UnitName: u.UnitName})
				}
			}
		}
		for j := range p.Customers {
			c := &p.Customers[j]
			for k := range c.Reports {
				if c.Reports[k].IsNew {
					out = append(out, NewReport{Report: c.Reports[k], CustomerName: c.Name})
				}
			}
			for k := range c.Units {
				u := &c.Units[k]
				for l := range u.Reports {
					if u.Reports[l].IsNew {
						out = append(out, NewReport{
							Report:       u.Reports[l],
							CustomerName: c.Name,
							UnitName:     u.UnitName,
						})
					}
				}
			}
		}
	}
	return out
}
