package hierarchy

// Remove deletes the node with the given kind and id from the forest
// in place, returning whether a node was removed. Container nodes take
// their descendants with them. A report is searched at the three
// levels it can live at (unit, customer-direct, partner-direct) and
// only the first match is removed; the upstream API guarantees at most
// one exists.
//
// Remove is the speculative half of the delete flow: the caller is
// expected to follow up with an authoritative refetch, so a transient
// forest the server would never produce is acceptable.
func Remove(f *Forest, kind Kind, id string) bool {
	switch kind {
	case KindPartner:
		for i := range *f {
			if (*f)[i].ID == id {
				*f = append((*f)[:i], (*f)[i+1:]...)
				return true
			}
		}
	case KindCustomer:
		for i := range *f {
			p := &(*f)[i]
			for j := range p.Customers {
				if p.Customers[j].ID == id {
					p.Customers = append(p.Customers[:j], p.Customers[j+1:]...)
					return true
				}
			}
		}
	case KindUnit:
		for i := range *f {
			p := &(*f)[i]
			if removeUnit(&p.Units, id) {
				return true
			}
			for j := range p.Customers {
				if removeUnit(&p.Customers[j].Units, id) {
					return true
				}
			}
		}
	case KindReport:
		for i := range *f {
			p := &(*f)[i]
			if removeReport(&p.Reports, id) {
				return true
			}
			for j := range p.Units {
				if removeReport(&p.Units[j].Reports, id) {
					return true
				}
			}
			for j := range p.Customers {
				c := &p.Customers[j]
				if removeReport(&c.Reports, id) {
					return true
				}
				for k := range c.Units {
					if removeReport(&c.Units[k].Reports, id) {
						return true
					}
				}
			}
		}
	}
	return false
}

func removeUnit(units *[]Unit, id string) bool {
	for i := range *units {
		if (*units)[i].ID == id {
			*units = append((*units)[:i], (*units)[i+1:]...)
			return true
		}
	}
	return false
}

func removeReport(reports *[]Report, id string) bool {
	for i := range *reports {
		if (*reports)[i].ID == id {
			*reports = append((*reports)[:i], (*reports)[i+1:]...)
			return true
		}
	}
	return false
}
