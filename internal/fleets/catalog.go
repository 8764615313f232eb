package fleets

// CatalogEntry is one fleet and the boats it operates.
type CatalogEntry struct {
	FleetName string
	Boats     []string
}

// DefaultCatalog is the fixed set of fleets and boats orders can be assigned to.
var DefaultCatalog = []CatalogEntry{
	{
		FleetName: "F/B DONYA DONYA 2x",
		Boats: []string{
			"F/B Lady Rachelle",
			"F/B Mariella",
			"F/B Princess Janica",
			"F/B Ruth Gaily",
		},
	},
	{
		FleetName: "F/B Doña Librada",
		Boats: []string{
			"F/B Adomar",
			"F/B Jenalyn",
			"F/B Mark Anthony",
		},
	},
	{
		FleetName: "Others",
		Boats: []string{
			"Office",
			"Shipyard",
		},
	},
}
