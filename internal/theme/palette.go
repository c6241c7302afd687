package theme

// Palette is the set of color tokens screens style themselves with.
type Palette struct {
	Background       string `json:"background"`
	Surface          string `json:"surface"`
	SurfaceSecondary string `json:"surfaceSecondary"`
	Text             string `json:"text"`
	TextSecondary    string `json:"textSecondary"`
	TextTertiary     string `json:"textTertiary"`
	Border           string `json:"border"`
	BorderLight      string `json:"borderLight"`
	Primary          string `json:"primary"`
	PrimaryLight     string `json:"primaryLight"`
	PrimaryDark      string `json:"primaryDark"`
	Secondary        string `json:"secondary"`
	Accent           string `json:"accent"`
	Error            string `json:"error"`
	Success          string `json:"success"`
	Warning          string `json:"warning"`
	TabBar           string `json:"tabBar"`
	Card             string `json:"card"`
	Shadow           string `json:"shadow"`
}

var LightPalette = Palette{
	Background:       "#FFFFFF",
	Surface:          "#F9FAFB",
	SurfaceSecondary: "#F3F4F6",
	Text:             "#111827",
	TextSecondary:    "#6B7280",
	TextTertiary:     "#9CA3AF",
	Border:           "#E5E7EB",
	BorderLight:      "#F3F4F6",
	Primary:          "#6366F1",
	PrimaryLight:     "#818CF8",
	PrimaryDark:      "#4F46E5",
	Secondary:        "#A78BFA",
	Accent:           "#EC4899",
	Error:            "#EF4444",
	Success:          "#10B981",
	Warning:          "#F59E0B",
	TabBar:           "#FFFFFF",
	Card:             "#FFFFFF",
	Shadow:           "#000000",
}

var DarkPalette = Palette{
	Background:       "#111827",
	Surface:          "#1F2937",
	SurfaceSecondary: "#374151",
	Text:             "#F9FAFB",
	TextSecondary:    "#D1D5DB",
	TextTertiary:     "#9CA3AF",
	Border:           "#374151",
	BorderLight:      "#4B5563",
	Primary:          "#6366F1",
	PrimaryLight:     "#818CF8",
	PrimaryDark:      "#4F46E5",
	Secondary:        "#A78BFA",
	Accent:           "#EC4899",
	Error:            "#EF4444",
	Success:          "#10B981",
	Warning:          "#F59E0B",
	TabBar:           "#1F2937",
	Card:             "rgba(31, 41, 55, 0.6)",
	Shadow:           "#000000",
}
