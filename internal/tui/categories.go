package tui

// Category is one section of the configuration menu
type Category struct {
	ID          string
	Name        string
	Description string
}

var Categories = []Category{
	{ID: "site", Name: "Site", Description: "Root URL and manifest list location"},
	{ID: "storage", Name: "Storage", Description: "Capture directory, version store and consent"},
	{ID: "network", Name: "Network", Description: "Timeouts, retries and proxy"},
	{ID: "connectivity", Name: "Connectivity", Description: "Probe URL and offline flag file"},
	{ID: "server", Name: "Server", Description: "Manifest publishing address and definitions"},
	{ID: "logging", Name: "Logging", Description: "Log level, format and file"},
}

func GetCategoryByID(id string) *Category {
	for i := range Categories {
		if Categories[i].ID == id {
			return &Categories[i]
		}
	}
	return nil
}

func GetCategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = c.Name
	}
	return names
}
