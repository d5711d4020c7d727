package httpx

// Page identifiers used in templates and navigation.
const (
	PageDashboard = "dashboard"
	PageAdmin     = "admin"
	PageCaregiver = "caregiver"
	PageClient    = "client"
	PageSignedOut = "signed-out"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "web/templates"
	TemplatePathFromTest = "../../web/templates" // from internal/http test files
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageDashboard: "dashboard-content",
	PageAdmin:     "admin-content",
	PageCaregiver: "caregiver-content",
	PageClient:    "client-content",
	PageSignedOut: "signed-out-content",
}

// ContentTemplateFor returns the content template for the given page.
// Falls back to the pending dashboard for unknown pages.
func ContentTemplateFor(page string) string {
	if name, ok := contentTemplates[page]; ok {
		return name
	}
	return "dashboard-content"
}
