package styles

// HighContrastTheme favors legibility on washed-out terminals.
var HighContrastTheme = Theme{
	Name: "high-contrast",
	Base: BaseColors{
		Background: "16",
		Foreground: "231",
		Muted:      "250",
		Accent:     "51",
		Border:     "255",
	},
	Message: MessageColors{
		Own:     "51",
		Other:   "226",
		Pending: "250",
		Failed:  "196",
	},
	Chrome: ChromeColors{
		Header:       "21",
		Footer:       "19",
		SelectedItem: "51",
		UnreadBadge:  "196",
		Alert:        "226",
		AlertError:   "196",
	},
	Borders: BorderColors{
		ActivePane:   "51",
		InactivePane: "250",
	},
}
