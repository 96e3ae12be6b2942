package email

// PreviewData is sample template data for `vistual email preview`.
var PreviewData = map[Template]map[string]string{
	TemplateWelcome: {
		"UserName": "Lucía",
	},
}
