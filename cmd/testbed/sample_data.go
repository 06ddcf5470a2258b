package main

import "tableflip.dev/tmpl/pkg/template"

func sampleTemplates() []template.Template {
	return []template.Template{
		{Subject: "Welcome aboard", Body: "Hi {{name}},\n\nThanks for signing up. Your workspace is ready."},
		{Subject: "Password reset", Body: "Someone asked to reset your password.\nIf it was you, follow the link below."},
		{Subject: "Invoice ready", Body: "Your invoice for {{month}} is attached."},
		{Subject: "Weekly digest", Body: ""},
		{Subject: "A subject long enough to check that the table truncates it instead of wrapping the row", Body: "Short body."},
		{Subject: "Unicode ✓ check", Body: "Emoji 🎉 and accents: café, naïve, über."},
	}
}
