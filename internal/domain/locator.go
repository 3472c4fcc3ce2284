package domain

import "strings"

// FilterLocators returns the locators whose name contains term,
// case-insensitively, in their original order. An empty term returns the
// input unchanged.
func FilterLocators(locators []Locator, term string) []Locator {
	if term == "" {
		return locators
	}
	needle := strings.ToLower(term)
	out := make([]Locator, 0, len(locators))
	for _, l := range locators {
		if strings.Contains(strings.ToLower(l.Name), needle) {
			out = append(out, l)
		}
	}
	return out
}

// ContractGroup is the set of a locator's contracts sharing one type.
type ContractGroup struct {
	Type      ContractType
	Contracts []Contract
}

// GroupContracts buckets contracts by type in ContractTypes order, omitting
// empty groups. Contracts with an unrecognised type are collected under
// ContractOther.
func GroupContracts(contracts []Contract) []ContractGroup {
	byType := make(map[ContractType][]Contract, len(ContractTypes))
	for _, c := range contracts {
		t := c.Type
		if !t.Valid() {
			t = ContractOther
		}
		byType[t] = append(byType[t], c)
	}
	groups := make([]ContractGroup, 0, len(byType))
	for _, t := range ContractTypes {
		if cs := byType[t]; len(cs) > 0 {
			groups = append(groups, ContractGroup{Type: t, Contracts: cs})
		}
	}
	return groups
}

// FindContract returns the contract with the given id across all locators.
func FindContract(locators []Locator, id string) (*Contract, bool) {
	for i := range locators {
		for j := range locators[i].Contracts {
			if locators[i].Contracts[j].ID == id {
				c := locators[i].Contracts[j]
				return &c, true
			}
		}
	}
	return nil, false
}

var shareSuffixes = []string{"/view?usp=sharing", "/edit?usp=sharing"}

// PreviewURL rewrites a hosted-document share link into its inline preview
// form. Links without a known share suffix are returned unchanged.
func PreviewURL(documentURL string) string {
	for _, suffix := range shareSuffixes {
		if strings.HasSuffix(documentURL, suffix) {
			return strings.TrimSuffix(documentURL, suffix) + "/preview"
		}
	}
	return documentURL
}

// Title is the label shown above the document viewer.
func (c Contract) Title() string {
	return c.FileName + " (" + string(c.Type) + ")"
}
